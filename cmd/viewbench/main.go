// Profiling:
// go build ./cmd/viewbench
// ./viewbench -profile cpu
// go tool pprof -http=":8000" ./viewbench cpu.pprof

package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/milk9111/dynecs/ecs"
	"github.com/pkg/profile"
)

type test0 struct {
	I int
	J int
}

type test1 struct {
	I int
	K int
}

type test2 struct {
	M int
	L int
}

func main() {
	entities := flag.Int("n", 10000, "entities to create")
	rounds := flag.Int("rounds", 1, "times to walk the view")
	mode := flag.String("profile", "", "profile mode: cpu or mem (written to the current directory)")
	flag.Parse()

	switch *mode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		log.Fatalf("unknown profile mode %q", *mode)
	}

	_, proxy, err := populate(*entities)
	if err != nil {
		log.Fatal(err)
	}

	for range *rounds {
		start := time.Now()
		n := 0
		for range proxy.View([]string{"Test3", "Test1", "Test2", "Test0"}, nil).All() {
			n++
		}
		fmt.Printf("%d in : %d\n", n, time.Since(start).Nanoseconds())
	}
}

// populate creates n entities carrying three native components and one
// dynamic component named Test3.
func populate(n int) (*ecs.Registry, *ecs.Proxy[test0], error) {
	r := ecs.NewRegistry()
	if err := ecs.ExposeInternalComponent[test1](r, "Test1"); err != nil {
		return nil, nil, err
	}
	if err := ecs.ExposeInternalComponent[test2](r, "Test2"); err != nil {
		return nil, nil, err
	}
	if err := ecs.ExposeInternalComponent[test0](r, "Test0"); err != nil {
		return nil, nil, err
	}
	proxy, err := ecs.NewProxy[test0](r)
	if err != nil {
		return nil, nil, err
	}

	for range n {
		e := r.Create()
		if _, err := ecs.Emplace(r, e, test1{I: 7, K: 211}); err != nil {
			return nil, nil, err
		}
		if _, err := ecs.Emplace(r, e, test2{M: 332, L: 5}); err != nil {
			return nil, nil, err
		}
		if _, err := ecs.Emplace(r, e, test0{I: 9, J: 111}); err != nil {
			return nil, nil, err
		}
		if _, err := proxy.Set(e, "Test3", test0{I: 9, J: 111}); err != nil {
			return nil, nil, err
		}
	}
	return r, proxy, nil
}
