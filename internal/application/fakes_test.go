package app

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"sync"

	"plantify/internal/domain/entity"
	"plantify/internal/domain/port"
)

const roseJSON = `{"name":"Rose","scientificName":"Rosa","family":"Rosaceae","description":"A woody shrub.","care":"Full sun.","funFacts":"Very old."}`

// fakeTrack считает вызовы Stop.
type fakeTrack struct {
	mu    sync.Mutex
	stops int
	err   error
}

func (t *fakeTrack) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stops++
	return t.err
}

func (t *fakeTrack) Stops() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stops
}

type fakeStream struct {
	tracks   []*fakeTrack
	frame    image.Image
	frameErr error
	playErr  error
}

func (s *fakeStream) Play(ctx context.Context) error { return s.playErr }

func (s *fakeStream) Frame(ctx context.Context) (image.Image, error) {
	if s.frameErr != nil {
		return nil, s.frameErr
	}
	return s.frame, nil
}

func (s *fakeStream) Tracks() []port.Track {
	out := make([]port.Track, 0, len(s.tracks))
	for _, t := range s.tracks {
		out = append(out, t)
	}
	return out
}

// openTracks число дорожек, которые ещё не остановлены.
func (s *fakeStream) openTracks() int {
	n := 0
	for _, t := range s.tracks {
		if t.Stops() == 0 {
			n++
		}
	}
	return n
}

type readyStream struct {
	*fakeStream
	readyCalls int
}

func (s *readyStream) WaitReady(ctx context.Context) error {
	s.readyCalls++
	return nil
}

type fakeCamera struct {
	stream  port.VideoStream
	openErr error
	opens   int
}

func (c *fakeCamera) Open(ctx context.Context) (port.VideoStream, error) {
	c.opens++
	if c.openErr != nil {
		return nil, c.openErr
	}
	return c.stream, nil
}

func newStream(tracks int) *fakeStream {
	s := &fakeStream{frame: solidImage(320, 240, color.RGBA{G: 200, A: 255})}
	for i := 0; i < tracks; i++ {
		s.tracks = append(s.tracks, &fakeTrack{})
	}
	return s
}

func solidImage(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

var colorRed = color.RGBA{R: 255, A: 255}

type reply struct {
	text string
	err  error
}

// fakeIdentifier отвечает сразу или ждёт ответа по «воротам», привязанным к байтам изображения.
type fakeIdentifier struct {
	mu           sync.Mutex
	readyErr     error
	text         string
	err          error
	calls        int
	gates        map[string]chan reply
	ignoreCancel bool
	lastPayload  entity.EncodedPayload
}

func (f *fakeIdentifier) Ready() error { return f.readyErr }

func (f *fakeIdentifier) Identify(ctx context.Context, payload entity.EncodedPayload) (string, error) {
	raw, _ := payload.Decode()

	f.mu.Lock()
	f.calls++
	f.lastPayload = payload
	gate := f.gates[string(raw)]
	text, err := f.text, f.err
	f.mu.Unlock()

	if gate == nil {
		return text, err
	}
	if f.ignoreCancel {
		r := <-gate
		return r.text, r.err
	}
	select {
	case r := <-gate:
		return r.text, r.err
	case <-ctx.Done():
		return "", &entity.TransportError{Err: ctx.Err()}
	}
}

func (f *fakeIdentifier) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeIdentifier) gate(key string) chan reply {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gates == nil {
		f.gates = make(map[string]chan reply)
	}
	ch := make(chan reply, 1)
	f.gates[key] = ch
	return ch
}

type failingBlob struct{}

func (failingBlob) Open() (io.ReadCloser, error) { return nil, errors.New("disk gone") }

func rawImage(data string) entity.RawImage {
	return entity.RawImage{Name: "leaf.png", MIMEType: "image/png", Size: int64(len(data)), Blob: entity.BytesBlob(data)}
}

// exclusiveCamera выдаёт новый поток на каждое открытие и запоминает,
// сколько потоков было открыто одновременно.
type exclusiveCamera struct {
	mu      sync.Mutex
	opens   int
	open    int
	maxOpen int
}

func (c *exclusiveCamera) Open(ctx context.Context) (port.VideoStream, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opens++
	c.open++
	if c.open > c.maxOpen {
		c.maxOpen = c.open
	}
	return &countedStream{fakeStream: newStream(0), cam: c}, nil
}

func (c *exclusiveCamera) release() {
	c.mu.Lock()
	c.open--
	c.mu.Unlock()
}

func (c *exclusiveCamera) stats() (opens, maxOpen int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opens, c.maxOpen
}

type countedStream struct {
	*fakeStream
	cam  *exclusiveCamera
	once sync.Once
}

func (s *countedStream) Tracks() []port.Track { return []port.Track{s} }

func (s *countedStream) Stop() error {
	s.once.Do(s.cam.release)
	return nil
}
