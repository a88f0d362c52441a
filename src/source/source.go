//Package source provides the frame sources feeding the shadow engine
package source

import (
	"fmt"
	"log/slog"
	"sort"

	"shadowlife/src/pixbuf"
)

//Source is a frame supplier with fixed dimensions
//Frame returns ok=false while nothing can be delivered; callers simply try again later
type Source interface {
	Frame() (frame *pixbuf.Buffer, ok bool)
	Size() (width int, height int)
	Close() error
}

//Names of the available sources
const (
	NameSynthetic = "synthetic"
	NameImages    = "images"
)

//Params configures a source created by New
type Params struct {
	Width  int
	Height int
	Dir    string //image directory for NameImages
	Seed   int64  //noise seed for NameSynthetic
	Mirror bool   //flip frames horizontally, like a mirror
	Logger *slog.Logger
}

var sources = map[string]func(p Params) (Source, error){
	NameSynthetic: func(p Params) (Source, error) {
		return NewSynthetic(p.Width, p.Height, p.Seed), nil
	},
	NameImages: func(p Params) (Source, error) {
		s, err := NewImageDir(p.Dir, p.Width, p.Height)
		if err != nil {
			return nil, err
		}
		s.SetLogger(p.Logger)
		return s, nil
	},
}

//Names lists the registered source names
func Names() []string {
	names := make([]string, 0, len(sources))
	for k := range sources {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

//New creates the named source
func New(name string, p Params) (Source, error) {
	create, ok := sources[name]
	if !ok {
		return nil, fmt.Errorf("unknown source %q", name)
	}
	s, err := create(p)
	if err != nil {
		return nil, fmt.Errorf("create %s source: %w", name, err)
	}
	if p.Mirror {
		s = NewMirror(s)
	}
	return s, nil
}

//Mirror flips every frame of the wrapped source horizontally
type Mirror struct {
	Source
}

//NewMirror wraps s
func NewMirror(s Source) *Mirror {
	return &Mirror{Source: s}
}

//Frame returns the mirrored frame of the wrapped source
func (m *Mirror) Frame() (*pixbuf.Buffer, bool) {
	frame, ok := m.Source.Frame()
	if !ok {
		return nil, false
	}
	return flipHorizontal(frame), true
}

func flipHorizontal(src *pixbuf.Buffer) *pixbuf.Buffer {
	dst := pixbuf.New(src.Width, src.Height)
	for row := 0; row < src.Height; row++ {
		for col := 0; col < src.Width; col++ {
			s := src.Offset(row, col)
			d := dst.Offset(row, src.Width-1-col)
			copy(dst.Pix[d:d+pixbuf.Channels], src.Pix[s:s+pixbuf.Channels])
		}
	}
	return dst
}
