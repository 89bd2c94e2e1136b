package prefs

import "fyne.io/fyne/v2"

// Fyne adapts the preferences of a fyne app. fyne writes preferences to
// disk on its own schedule, so Set never fails.
type Fyne struct {
	p fyne.Preferences
}

// NewFyne wraps p.
func NewFyne(p fyne.Preferences) *Fyne {
	return &Fyne{p: p}
}

func (f *Fyne) Get(key string) (string, bool) {
	const missing = "\x00missing"
	v := f.p.StringWithFallback(key, missing)
	if v == missing {
		return "", false
	}
	return v, true
}

func (f *Fyne) Set(key, value string) error {
	f.p.SetString(key, value)
	return nil
}
