// Package server wires a sheet directory into an SSH served sheet editor.
package server

import (
	"context"
	"io"
	"log"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/gliderlabs/ssh"
	"github.com/pkg/errors"
	"github.com/zond/charsheet"
	"github.com/zond/charsheet/editor"
	"github.com/zond/charsheet/loop"
	"github.com/zond/charsheet/pemfile"
	"github.com/zond/charsheet/property"
	"github.com/zond/charsheet/sheet"
	"github.com/zond/charsheet/storage"
	"github.com/zond/charsheet/storage/dbm"
	"github.com/zond/charsheet/storage/sqlkv"

	gossh "golang.org/x/crypto/ssh"
)

const (
	BackendTkrzw  = "tkrzw"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

const (
	titleFile = "title"
)

type Config struct {
	SSHAddr string
	Dir     string
	// Backend is one of BackendTkrzw, BackendSQLite and BackendMemory.
	Backend string
	// Character names the character until it is renamed.
	Character string
	// CacheTTL is how long values read from the backend are kept in memory. Zero disables the cache.
	CacheTTL    time.Duration
	CacheKeys   int
	HostKeyBits int
}

func DefaultConfig() Config {
	return Config{
		SSHAddr:     "127.0.0.1:15000",
		Dir:         filepath.Join(os.Getenv("HOME"), ".charsheet"),
		Backend:     BackendTkrzw,
		Character:   "Unnamed",
		CacheTTL:    time.Minute,
		CacheKeys:   4096,
		HostKeyBits: pemfile.DefaultBits,
	}
}

type nopCloser struct{}

func (nopCloser) Close() error {
	return nil
}

// OpenStore opens the backend store kept in dir.
func OpenStore(backend string, dir string) (storage.Store, io.Closer, error) {
	switch backend {
	case BackendTkrzw:
		tree, err := dbm.OpenTree(filepath.Join(dir, "sheet"))
		if err != nil {
			return nil, nil, charsheet.WithStack(err)
		}
		return tree, tree, nil
	case BackendSQLite:
		db, err := sqlkv.Open(filepath.Join(dir, "sheet.sqlite"))
		if err != nil {
			return nil, nil, charsheet.WithStack(err)
		}
		return db, db, nil
	case BackendMemory:
		return storage.NewMemory(), nopCloser{}, nil
	}
	return nil, nil, errors.Errorf("unknown backend %q", backend)
}

// OpenTitle opens the character name kept in dir.
func OpenTitle(dir string, def string) (*storage.FileTitle, error) {
	return storage.OpenFileTitle(filepath.Join(dir, titleFile), def)
}

type Server struct {
	config   Config
	store    storage.Store
	closer   io.Closer
	loop     *loop.Loop
	sheet    *sheet.Sheet
	editor   *editor.Editor
	pemBytes []byte
	signer   gossh.Signer
}

func New(config Config) (*Server, error) {
	if err := os.MkdirAll(config.Dir, 0700); err != nil {
		return nil, charsheet.WithStack(err)
	}

	keys := pemfile.KeyParams{
		Bits:          config.HostKeyBits,
		KeyPath:       filepath.Join(config.Dir, "private.pem"),
		SSHPubKeyPath: filepath.Join(config.Dir, "public.pem"),
	}
	pemBytes, signer, generated, err := keys.Load()
	if err != nil {
		return nil, charsheet.WithStack(err)
	}
	if generated {
		log.Printf("Generated server key pair in %q", config.Dir)
	}

	backend, closer, err := OpenStore(config.Backend, config.Dir)
	if err != nil {
		return nil, charsheet.WithStack(err)
	}
	var store storage.Store = backend
	if config.CacheTTL > 0 {
		store = storage.NewCached(backend, config.CacheTTL, config.CacheKeys)
	}

	title, err := OpenTitle(config.Dir, config.Character)
	if err != nil {
		closer.Close()
		return nil, charsheet.WithStack(err)
	}

	l := loop.New()
	sh, err := sheet.New(store, title, property.WithDispatcher(l))
	if err != nil {
		closer.Close()
		return nil, charsheet.WithStack(err)
	}
	return &Server{
		config:   config,
		store:    store,
		closer:   closer,
		loop:     l,
		sheet:    sh,
		editor:   editor.New(sh, l),
		pemBytes: pemBytes,
		signer:   signer,
	}, nil
}

// Start listens on the configured address and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.config.SSHAddr)
	if err != nil {
		return charsheet.WithStack(err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves sessions from listener until ctx is done, and closes the store before returning.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loopDone := make(chan error, 1)
	go func() {
		loopDone <- s.loop.Start(ctx)
	}()

	srv := &ssh.Server{
		Handler: s.editor.HandleSession,
	}
	if err := srv.SetOption(ssh.HostKeyPEM(s.pemBytes)); err != nil {
		return charsheet.WithStack(err)
	}
	stop := context.AfterFunc(ctx, func() {
		if err := srv.Close(); err != nil {
			log.Printf("closing SSH server: %v", err)
		}
	})
	defer stop()

	log.Printf("Listening on %q with public key %q", listener.Addr(), gossh.FingerprintSHA256(s.signer.PublicKey()))
	serveErr := srv.Serve(listener)
	cancel()
	<-loopDone
	if err := s.closer.Close(); err != nil {
		log.Printf("closing store: %v", err)
	}
	if errors.Is(serveErr, ssh.ErrServerClosed) {
		return nil
	}
	return charsheet.WithStack(serveErr)
}
