package server

import (
	"bytes"
	"context"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/zond/charsheet/storage/storetest"

	gossh "golang.org/x/crypto/ssh"
)

func TestOpenStore(t *testing.T) {
	for _, backend := range []string{BackendTkrzw, BackendSQLite, BackendMemory} {
		t.Run(backend, func(t *testing.T) {
			store, closer, err := OpenStore(backend, t.TempDir())
			if err != nil {
				t.Fatal(err)
			}
			defer closer.Close()
			storetest.Run(t, store)
		})
	}
	if _, _, err := OpenStore("tape", t.TempDir()); err == nil {
		t.Errorf("unknown backend should fail")
	}
}

type syncBuffer struct {
	mutex sync.Mutex
	buf   bytes.Buffer
}

func (s *syncBuffer) Write(b []byte) (int, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.buf.Write(b)
}

func (s *syncBuffer) String() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.buf.String()
}

func waitFor(t *testing.T, buf *syncBuffer, want string) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for !strings.Contains(buf.String(), want) {
		if time.Now().After(deadline) {
			t.Fatalf("%q never contained %q", buf.String(), want)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestServeSession(t *testing.T) {
	config := DefaultConfig()
	config.Dir = t.TempDir()
	config.Backend = BackendMemory
	config.Character = "Bob"
	config.HostKeyBits = 2048
	srv, err := New(config)
	if err != nil {
		t.Fatal(err)
	}
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() {
		served <- srv.Serve(ctx, listener)
	}()

	client, err := gossh.Dial("tcp", listener.Addr().String(), &gossh.ClientConfig{
		User:            "alice",
		HostKeyCallback: gossh.InsecureIgnoreHostKey(),
	})
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()
	sess, err := client.NewSession()
	if err != nil {
		t.Fatal(err)
	}
	stdin, err := sess.StdinPipe()
	if err != nil {
		t.Fatal(err)
	}
	stdout, err := sess.StdoutPipe()
	if err != nil {
		t.Fatal(err)
	}
	output := &syncBuffer{}
	go io.Copy(output, stdout)
	if err := sess.Shell(); err != nil {
		t.Fatal(err)
	}
	waitFor(t, output, `Editing "Bob"`)
	if _, err := io.WriteString(stdin, "set level 5\r"); err != nil {
		t.Fatal(err)
	}
	waitFor(t, output, "proficiency: +3")
	if _, err := io.WriteString(stdin, "quit\r"); err != nil {
		t.Fatal(err)
	}
	if err := sess.Wait(); err != nil {
		t.Errorf("session ended with %v", err)
	}

	cancel()
	select {
	case err := <-served:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("Serve never returned")
	}
}
