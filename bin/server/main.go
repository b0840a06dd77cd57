package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/zond/charsheet"
	"github.com/zond/charsheet/server"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	config := server.DefaultConfig()

	flag.StringVar(&config.SSHAddr, "iface", config.SSHAddr, "Where to listen to SSH connections.")
	flag.StringVar(&config.Dir, "dir", config.Dir, "Where to save the sheet, its title and the host key.")
	flag.StringVar(&config.Backend, "backend", config.Backend, "Store backend: tkrzw, sqlite or memory.")
	flag.StringVar(&config.Character, "character", config.Character, "Character name of a new sheet.")
	flag.DurationVar(&config.CacheTTL, "cache", config.CacheTTL, "How long to cache values read from the store, 0 to disable.")
	logPath := flag.String("log", "", "File to also log to, rotated when it grows large.")

	flag.Parse()

	if *logPath != "" {
		log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   *logPath,
			MaxSize:    10,
			MaxBackups: 5,
			MaxAge:     28,
		}))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(config)
	if err != nil {
		log.Println(charsheet.StackTrace(err))
		log.Fatal(err)
	}

	if err := srv.Start(ctx); err != nil {
		log.Println(charsheet.StackTrace(err))
		log.Fatal(err)
	}
}
