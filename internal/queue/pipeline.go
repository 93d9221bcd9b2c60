package queue

import (
	"context"
	"fmt"
)

// Pipeline runs stages in order, feeding each the message returned by the previous one
type Pipeline struct {
	stages []Stage
}

func NewPipeline(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// Run processes msg through all stages and stops at the first error.
func (p *Pipeline) Run(ctx context.Context, msg *Message) (*Message, error) {
	var err error
	for i, stage := range p.stages {
		msg, err = stage.Process(ctx, msg)
		if err != nil {
			return nil, fmt.Errorf("pipeline stage %d: %w", i, err)
		}
		if msg == nil {
			// stage consumed the message
			return nil, nil
		}
	}

	return msg, nil
}
