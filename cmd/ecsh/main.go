package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/milk9111/dynecs/prefabs"
	"github.com/milk9111/dynecs/script"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

func main() {
	sceneName := flag.String("scene", "demo.yaml", "scene file in the prefabs dir (falls back to the embedded copy)")
	dir := flag.String("dir", prefabs.Dir, "directory checked for scenes and scripts before the embedded files")
	ticks := flag.Int("ticks", -1, "ticks to run (overrides the scene when >= 0)")
	debug := flag.Bool("debug", false, "enable debug logging")
	watch := flag.Bool("watch", false, "reload the scene when it or its scripts change")
	interval := flag.Duration("interval", 500*time.Millisecond, "tick interval while watching")
	dump := flag.Bool("dump", true, "print named entities as YAML after the run")
	maxAllocs := flag.Int64("max-allocs", -1, "allocation limit per script run (-1 for none)")
	modules := flag.String("stdlib", "", "comma separated tengo stdlib modules scripts may import (default all)")
	flag.Parse()

	prefabs.Dir = *dir

	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hostOpts := []script.Option{script.WithMaxAllocs(*maxAllocs)}
	if *modules != "" {
		hostOpts = append(hostOpts, script.WithStdlib(strings.Split(*modules, ",")...))
	}

	catalog := newCatalog()
	s, err := newSession(ctx, *sceneName, catalog, logger, hostOpts...)
	if err != nil {
		log.Fatal(err)
	}
	setLevel(level, s.scene.LogLevel, *debug)

	if *watch {
		err = watchLoop(ctx, s, *sceneName, catalog, logger, level, *debug, *interval, hostOpts)
	} else {
		err = runTicks(s, *ticks, *dump)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}

func runTicks(s *session, override int, dump bool) error {
	defer s.Close()

	n := s.scene.Ticks
	if override >= 0 {
		n = override
	}
	for range n {
		s.step()
	}
	if f := s.failures(); f > 0 {
		s.logger.Warn("script failures", "count", f)
	}
	if !dump {
		return nil
	}
	return dumpSnapshot(s)
}

// watchLoop ticks s on a timer and swaps in a fresh session whenever a scene
// or script file changes. All registry access happens on this goroutine.
func watchLoop(ctx context.Context, s *session, sceneName string, catalog *prefabs.Catalog,
	logger *slog.Logger, level *slog.LevelVar, debug bool, interval time.Duration, hostOpts []script.Option) error {
	dirs := []string{prefabs.Dir, filepath.Join(prefabs.Dir, "scripts")}
	st := make(stamps)
	st.seed(s.scene, sceneName)
	w, err := prefabs.NewWatcher(logger, dirs...)
	if err != nil {
		_ = s.Close()
		return fmt.Errorf("watch %v: %w", dirs, err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		return w.Close()
	})
	g.Go(func() error {
		defer func() { _ = s.Close() }()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				s.step()
			case change, ok := <-w.Events:
				if !ok {
					return nil
				}
				if !st.changed(change.Path) {
					logger.Debug("unchanged, skipping reload", "path", change.Path)
					continue
				}
				logger.Info("reloading", "path", change.Path)
				next, err := newSession(ctx, sceneName, catalog, logger, hostOpts...)
				if err != nil {
					logger.Error("reload failed, keeping current scene", "err", err)
					continue
				}
				_ = s.Close()
				s = next
				st.seed(s.scene, sceneName)
				setLevel(level, s.scene.LogLevel, debug)
			case err, ok := <-w.Errors:
				if !ok {
					return nil
				}
				logger.Warn("watcher error", "err", err)
			}
		}
	})
	return g.Wait()
}

func setLevel(level *slog.LevelVar, name string, debug bool) {
	if debug {
		level.Set(slog.LevelDebug)
		return
	}
	if name == "" {
		level.Set(slog.LevelInfo)
		return
	}
	if err := level.UnmarshalText([]byte(name)); err != nil {
		level.Set(slog.LevelInfo)
	}
}

func dumpSnapshot(s *session) error {
	out, err := yaml.Marshal(s.snapshot())
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	_, err = os.Stdout.Write(out)
	return err
}
