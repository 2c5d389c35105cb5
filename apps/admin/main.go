package main

import (
	"context"
	"log"
	"os"

	"github.com/newrise0410/piano-academy-app-sub002/core"
	"github.com/newrise0410/piano-academy-app-sub002/storage"
	"github.com/newrise0410/piano-academy-app-sub002/storage/kv"
)

var logger *log.Logger

type stdLogger struct{ std *log.Logger }

func (l stdLogger) Debug(msg string, _ ...interface{}) { l.std.Println(msg) }
func (l stdLogger) Info(msg string, _ ...interface{})  { l.std.Println(msg) }
func (l stdLogger) Warn(msg string, _ ...interface{})  { l.std.Println(msg) }
func (l stdLogger) Error(msg string, _ ...interface{}) { l.std.Println(msg) }
func (l stdLogger) Fatal(msg string, _ ...interface{}) { l.std.Fatal(msg) }

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()
	ctx := context.Background()

	// admin commands talk to the repositories directly; no token store needed
	repos, err := storage.NewRepositories(ctx, conf, kv.NewInmemStore(), stdLogger{std: logger})
	errAndDie(err)
	defer repos.Close(ctx)

	cli := commandLine{
		usrRepo: repos.Users,
		stuRepo: repos.Students,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
