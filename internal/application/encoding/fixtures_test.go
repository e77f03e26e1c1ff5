package encoding

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/turtacn/molsmarts/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/molsmarts/pkg/errors"
)

type atomLine struct {
	symbol string
	x, y   float64
}

type bondLine struct {
	from, to, kind int
}

func molfileText(name string, atoms []atomLine, bonds []bondLine) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n  test\n\n", name)
	fmt.Fprintf(&sb, "%3d%3d  0  0  0  0  0  0  0  0999 V2000\n", len(atoms), len(bonds))
	for _, a := range atoms {
		fmt.Fprintf(&sb, "%10.4f%10.4f%10.4f %-3s 0  0  0  0  0  0  0  0  0  0  0  0\n", a.x, a.y, 0.0, a.symbol)
	}
	for _, b := range bonds {
		fmt.Fprintf(&sb, "%3d%3d%3d  0\n", b.from, b.to, b.kind)
	}
	sb.WriteString("M  END\n")
	return sb.String()
}

func ethanolMolfile() string {
	return molfileText("ethanol",
		[]atomLine{{symbol: "C"}, {symbol: "C", x: 1.3}, {symbol: "O", x: 2, y: 1}},
		[]bondLine{{1, 2, 1}, {2, 3, 1}})
}

func waterMolfile() string {
	return molfileText("water", []atomLine{{symbol: "O"}}, nil)
}

func benzeneMolfile() string {
	atoms := make([]atomLine, 6)
	for i := range atoms {
		atoms[i] = atomLine{symbol: "C", x: float64(i)}
	}
	return molfileText("benzene", atoms,
		[]bondLine{{1, 2, 2}, {2, 3, 1}, {3, 4, 2}, {4, 5, 1}, {5, 6, 2}, {6, 1, 1}})
}

// brokenMolfile has a bond to an atom that does not exist.
func brokenMolfile() string {
	return molfileText("broken",
		[]atomLine{{symbol: "C"}, {symbol: "C"}},
		[]bondLine{{1, 3, 1}})
}

func sdf(records ...string) []byte {
	var sb strings.Builder
	for _, r := range records {
		sb.WriteString(r)
		sb.WriteString("$$$$\n")
	}
	return []byte(sb.String())
}

// memoryObjects is an in-memory object store.
type memoryObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	putErr  error
	getErr  error
}

func newMemoryObjects() *memoryObjects {
	return &memoryObjects{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (m *memoryObjects) Put(_ context.Context, key string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.objects[key] = append([]byte(nil), data...)
	m.types[key] = contentType
	return nil
}

func (m *memoryObjects) PutStream(ctx context.Context, key string, r io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return m.Put(ctx, key, data, contentType)
}

func (m *memoryObjects) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	data, ok := m.objects[key]
	if !ok {
		return nil, errors.New(errors.ErrCodeObjectNotFound, "object not found").WithDetail(key)
	}
	return data, nil
}

func (m *memoryObjects) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok, nil
}

func (m *memoryObjects) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memoryObjects) PresignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://objects.test/" + key, nil
}

func (m *memoryObjects) object(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return string(m.objects[key])
}

// recordingPublisher keeps every published message.
type recordingPublisher struct {
	mu       sync.Mutex
	messages []*kafka.ProducerMessage
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, msg *kafka.ProducerMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, msg)
	return nil
}

func (p *recordingPublisher) onTopic(topic string) []*kafka.ProducerMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []*kafka.ProducerMessage
	for _, m := range p.messages {
		if m.Topic == topic {
			out = append(out, m)
		}
	}
	return out
}

// heldLock is a lock somebody else owns.
type heldLock struct{}

func (heldLock) TryLock(context.Context) (bool, error) { return false, nil }
func (heldLock) Unlock(context.Context) error          { return nil }

//Personal.AI order the ending
