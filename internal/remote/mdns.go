package remote

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
)

// ServiceType is the mDNS service boards are advertised under.
const ServiceType = "_whiteboard._tcp"

const idPrefix = "id="

// Board is an advertised board found on the LAN.
type Board struct {
	Name string
	Addr string
	ID   string
}

// Advertise announces a board listening on port. Shut the returned server
// down to withdraw it.
func Advertise(port int, sessionID string) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("hostname: %w", err)
	}

	service, err := mdns.NewMDNSService(host, ServiceType, "", "", port, nil,
		[]string{"whiteboard", idPrefix + sessionID})
	if err != nil {
		return nil, fmt.Errorf("mdns service: %w", err)
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("mdns server: %w", err)
	}
	return server, nil
}

// Browse lists the boards that answer within timeout.
func Browse(timeout time.Duration) ([]Board, error) {
	entries := make(chan *mdns.ServiceEntry, 8)
	done := make(chan []Board)
	go func() {
		var boards []Board
		for e := range entries {
			if b, ok := boardFromEntry(e); ok {
				boards = append(boards, b)
			}
		}
		done <- boards
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	err := mdns.Query(params)
	close(entries)
	boards := <-done
	if err != nil {
		return boards, fmt.Errorf("mdns query: %w", err)
	}
	return boards, nil
}

func boardFromEntry(e *mdns.ServiceEntry) (Board, bool) {
	if e == nil || e.AddrV4 == nil || e.Port == 0 {
		return Board{}, false
	}
	b := Board{
		Name: strings.TrimSuffix(e.Name, "."+ServiceType+".local."),
		Addr: e.AddrV4.String() + ":" + strconv.Itoa(e.Port),
	}
	for _, field := range e.InfoFields {
		if id, ok := strings.CutPrefix(field, idPrefix); ok {
			b.ID = id
		}
	}
	return b, true
}
