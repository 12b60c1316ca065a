package main

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/bitmark-inc/covid-monthly/api"
	"github.com/bitmark-inc/covid-monthly/store"
)

// lifecycle - startup context and the services to stop on shutdown. It is
// shared between main and the signal handler.
type lifecycle struct {
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once

	mu         sync.Mutex
	server     *api.Server
	mongoStore store.MongoStore
}

func newLifecycle() *lifecycle {
	ctx, cancel := context.WithCancel(context.Background())
	return &lifecycle{
		ctx:    ctx,
		cancel: cancel,
	}
}

// Context - cancelled when initialization is done or interrupted
func (l *lifecycle) Context() context.Context {
	return l.ctx
}

// EndInitialization - release the startup context. Safe to call more than once.
func (l *lifecycle) EndInitialization() {
	l.once.Do(l.cancel)
}

func (l *lifecycle) SetServer(s *api.Server) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.server = s
}

func (l *lifecycle) SetMongoStore(s store.MongoStore) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mongoStore = s
}

// Shutdown - interrupt initialization, then stop the server and close the store
func (l *lifecycle) Shutdown(timeout time.Duration) {
	l.EndInitialization()
	<-l.ctx.Done()

	l.mu.Lock()
	server, mongoStore := l.server, l.mongoStore
	l.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if server != nil {
		log.Info("Shutdown api server")
		if err := server.Shutdown(ctx); err != nil {
			log.Error("Server Shutdown:", err)
		}
	}

	if mongoStore != nil {
		log.Info("Shutting down mongo store")
		mongoStore.Close()
	}
}
