package logger

import (
	"bufio"
	"fmt"
	"os"
	"sync"
	"time"
)

const (
	// LogFilePermissions restricts log files to the service user
	LogFilePermissions = 0o600

	sinkBufferSize    = 32 * 1024
	sinkFlushInterval = 5 * time.Second
)

// fileSink is a buffered, append-only log file flushed periodically and on Close
type fileSink struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
	stop   chan struct{}
	done   chan struct{}
}

func openFileSink(path string) (*fileSink, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, LogFilePermissions) //nolint:gosec // path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	s := &fileSink{
		file:   file,
		writer: bufio.NewWriterSize(file, sinkBufferSize),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go s.flushLoop()

	return s, nil
}

func (s *fileSink) flushLoop() {
	defer close(s.done)

	ticker := time.NewTicker(sinkFlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			_ = s.Flush()
		}
	}
}

func (s *fileSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writer == nil {
		return 0, fmt.Errorf("log file is closed")
	}
	return s.writer.Write(p)
}

// Flush pushes buffered lines to the OS without fsync
func (s *fileSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writer == nil {
		return nil
	}
	return s.writer.Flush()
}

// Close stops the flush loop, syncs and closes the file. Safe to call twice.
func (s *fileSink) Close() error {
	s.mu.Lock()
	if s.writer == nil {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	close(s.stop)
	<-s.done

	s.mu.Lock()
	defer s.mu.Unlock()

	flushErr := s.writer.Flush()
	syncErr := s.file.Sync()
	closeErr := s.file.Close()
	s.writer = nil
	s.file = nil

	if flushErr != nil {
		return flushErr
	}
	if syncErr != nil {
		return syncErr
	}
	return closeErr
}
