package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pixil98/go-texter/internal/refresh"
)

const (
	DisplaySubjectPrefix = "texter.display."

	OpShow = "show"
	OpHide = "hide"
)

// Publisher is the publish half of the bus.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// DisplayObserver is told about every display event sent.
type DisplayObserver interface {
	ObserveDisplay(op string, err error)
}

// DisplayEvent is the payload published for each show or hide.
type DisplayEvent struct {
	Op   string            `json:"op"`
	Text refresh.Placement `json:"text"`
}

// DisplayPublisher forwards show and hide calls to per-zone subjects where the
// world server's renderer listens.
type DisplayPublisher struct {
	pub      Publisher
	observer DisplayObserver
}

func NewDisplayPublisher(pub Publisher, observer DisplayObserver) *DisplayPublisher {
	return &DisplayPublisher{pub: pub, observer: observer}
}

func (p *DisplayPublisher) Show(_ context.Context, pl refresh.Placement) error {
	return p.send(OpShow, pl)
}

func (p *DisplayPublisher) Hide(_ context.Context, pl refresh.Placement) error {
	return p.send(OpHide, pl)
}

func (p *DisplayPublisher) send(op string, pl refresh.Placement) error {
	data, err := json.Marshal(DisplayEvent{Op: op, Text: pl})
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", op, err)
	}

	err = p.pub.Publish(DisplaySubject(pl.Zone), data)
	if errors.Is(err, ErrNotStarted) {
		return fmt.Errorf("%w: %w", refresh.ErrDisplayUnavailable, err)
	}
	if p.observer != nil {
		p.observer.ObserveDisplay(op, err)
	}
	if err != nil {
		return fmt.Errorf("publishing %s event: %w", op, err)
	}
	return nil
}

// DisplaySubject returns the subject for zone. Characters NATS treats as
// token separators or wildcards are replaced.
func DisplaySubject(zone string) string {
	return DisplaySubjectPrefix + subjectReplacer.Replace(zone)
}

var subjectReplacer = strings.NewReplacer(".", "_", " ", "_", "\t", "_", "*", "_", ">", "_")
