package classify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------- helpers ----------

func static(content string) Loader {
	return func() ([]byte, error) { return []byte(content), nil }
}

func failing(err error) Loader {
	return func() ([]byte, error) { return nil, err }
}

// ---------- tests ----------

func TestLanguageFor(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"main.go", "Go"},
		{"src/app.PY", "Python"},
		{"web/index.tsx", "TypeScript"},
		{"lib/util.hpp", "C++"},
		{"config/settings.yml", "YAML"},
		{"Makefile", Unknown},
		{"LICENSE", Unknown},
		{"archive.xyz", Unknown},
		{".gitignore", Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, LanguageFor(tt.path))
		})
	}
}

func TestCountLines(t *testing.T) {
	assert.Equal(t, 0, CountLines(nil))
	assert.Equal(t, 0, CountLines([]byte("")))
	assert.Equal(t, 1, CountLines([]byte("one")))
	assert.Equal(t, 1, CountLines([]byte("one\n")))
	assert.Equal(t, 2, CountLines([]byte("one\ntwo")))
	assert.Equal(t, 3, CountLines([]byte("\n\n\n")))
	assert.Equal(t, 2, CountLines([]byte("a\r\nb\r\n")))
}

func TestIsBinary(t *testing.T) {
	assert.False(t, IsBinary([]byte("plain text")))
	assert.True(t, IsBinary([]byte{'P', 'N', 'G', 0, 1}))

	late := make([]byte, binarySniffLen+10)
	for i := range late {
		late[i] = 'a'
	}
	late[binarySniffLen+5] = 0
	assert.False(t, IsBinary(late), "NUL past the sniff window is ignored")
}

func TestClassifyTextFile(t *testing.T) {
	c := New(false)
	sf := c.Classify(context.Background(), "app/main.py", 0, static("import os\nprint(1)\n"))

	assert.Equal(t, "app/main.py", sf.Path)
	assert.Equal(t, "Python", sf.Language)
	assert.Equal(t, 2, sf.Lines)
	assert.Equal(t, int64(19), sf.Size)
	assert.False(t, sf.Skipped)
	assert.Equal(t, "import os\nprint(1)\n", string(sf.Content))
	assert.Empty(t, sf.Functions, "outlines disabled")
}

func TestClassifyUnreadableFile(t *testing.T) {
	c := New(true)
	sf := c.Classify(context.Background(), "secret.go", 42, failing(errors.New("permission denied")))

	assert.Equal(t, Unknown, sf.Language)
	assert.Equal(t, 0, sf.Lines)
	assert.True(t, sf.Skipped)
	assert.Nil(t, sf.Content)
	assert.Equal(t, int64(42), sf.Size)
}

func TestClassifyBinaryFile(t *testing.T) {
	c := New(true)
	sf := c.Classify(context.Background(), "tool.go", 0, static("\x00\x01\x02binary"))

	assert.Equal(t, Unknown, sf.Language)
	assert.Equal(t, 0, sf.Lines)
	assert.True(t, sf.Binary)
	assert.False(t, sf.Skipped)
	assert.Nil(t, sf.Content)
}

func TestClassifyWithOutline(t *testing.T) {
	c := New(true)
	sf := c.Classify(context.Background(), "server.go", 0, static(`package server

import "net/http"

type Server struct{}

func (s *Server) Start() error { return nil }

func New() *Server { return &Server{} }
`))

	require.Equal(t, "Go", sf.Language)
	assert.Equal(t, []string{"Start", "New"}, sf.Functions)
	assert.Equal(t, []string{"Server"}, sf.Classes)
	assert.Equal(t, []string{"net/http"}, sf.Imports)
}

func TestClassifyConcurrentUse(t *testing.T) {
	c := New(true)
	done := make(chan SourceFile, 8)
	for i := 0; i < 8; i++ {
		go func() {
			done <- c.Classify(context.Background(), "x.py", 0, static("def f():\n    pass\n"))
		}()
	}
	for i := 0; i < 8; i++ {
		sf := <-done
		assert.Equal(t, []string{"f"}, sf.Functions)
	}
}
