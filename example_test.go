package stepflow_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/stepflow"
	"github.com/aretw0/stepflow/pkg/domain"
)

// ExampleNew builds a two-step pipeline and runs it.
func ExampleNew() {
	g := stepflow.New("counter")
	g.AddNode("double", func(ctx context.Context, s domain.State) (domain.State, error) {
		s["n"] = s["n"].(int) * 2
		return s, nil
	})
	g.AddNode("describe", func(ctx context.Context, s domain.State) (domain.State, error) {
		s["text"] = fmt.Sprintf("n is %d", s["n"])
		return s, nil
	})
	if err := g.AddEdge("double", "describe"); err != nil {
		log.Fatal(err)
	}

	res, err := g.Run(context.Background(), domain.State{"n": 21})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(res.State["text"])
	fmt.Println(res.Trace.Nodes())
	// Output:
	// n is 42
	// [double describe]
}

// ExampleGraph_Run_loop shows a node asking to be executed again.
func ExampleGraph_Run_loop() {
	g := stepflow.New("retry")
	g.AddNode("attempt", func(ctx context.Context, s domain.State) (domain.State, error) {
		tries := s["tries"].(int) + 1
		s["tries"] = tries
		s[domain.KeyLoopContinue] = tries < 3
		return s, nil
	})

	res, err := g.Run(context.Background(), domain.State{"tries": 0})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(res.State["tries"], res.Status)
	// Output: 3 completed
}

// ExampleGraph_Run_conditional routes through an "if_" marker.
func ExampleGraph_Run_conditional() {
	g := stepflow.New("triage")
	g.AddNode("classify", func(ctx context.Context, s domain.State) (domain.State, error) {
		if s["score"].(int) >= 50 {
			s[domain.KeyRouteTo] = "accept"
		} else {
			s[domain.KeyRouteTo] = "reject"
		}
		return s, nil
	})
	g.AddNode("accept", func(ctx context.Context, s domain.State) (domain.State, error) {
		s["verdict"] = "accepted"
		return s, nil
	})
	g.AddNode("reject", func(ctx context.Context, s domain.State) (domain.State, error) {
		s["verdict"] = "rejected"
		return s, nil
	})
	if err := g.AddEdge("classify", "if_score"); err != nil {
		log.Fatal(err)
	}

	res, err := g.Run(context.Background(), domain.State{"score": 12})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(res.State["verdict"], res.Trace.Nodes())
	// Output: rejected [classify reject]
}
