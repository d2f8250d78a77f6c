package log

import (
	"fmt"
	"io"
	"os"
)

const (
	AppenderConsole = "console"
	AppenderFile    = "file"
)

type MultiWriter struct {
	writers []io.Writer
}

func (m *MultiWriter) Write(p []byte) (n int, err error) {
	for _, w := range m.writers {
		_, e := w.Write(p)
		if e != nil {
			err = e
		}
	}
	return len(p), err
}

func (m *MultiWriter) Add(writer io.Writer) *MultiWriter {
	m.writers = append(m.writers, writer)
	return m
}

func (m *MultiWriter) Len() int {
	return len(m.writers)
}

func NewMultiWriter() *MultiWriter {
	return &MultiWriter{writers: make([]io.Writer, 0)}
}

// buildAppenders turns appender configs into one writer. No appenders means stdout.
func buildAppenders(cfgs []AppenderConfig) (*MultiWriter, error) {
	mw := NewMultiWriter()
	for _, ac := range cfgs {
		switch ac.Type {
		case AppenderConsole, "":
			mw.Add(os.Stdout)
		case AppenderFile:
			w, err := newFileAppender(ac.Options)
			if err != nil {
				return nil, err
			}
			mw.Add(w)
		default:
			return nil, fmt.Errorf("unsupported appender type: %s", ac.Type)
		}
	}
	if mw.Len() == 0 {
		mw.Add(os.Stdout)
	}
	return mw, nil
}
