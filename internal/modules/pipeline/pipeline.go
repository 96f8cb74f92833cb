package pipeline

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// stageBuffer is the capacity of the channels between stages. It lets a
// stage hand off its result and pick up the next item without waiting for
// the consumer.
const stageBuffer = 50

// Stage is one step of the processing chain: it drains its input channel
// and sends whatever it produces to its output channel. A stage handles one
// item at a time, so items keep their order on the way through.
type Stage interface {
	Execute(ctx context.Context, input <-chan interface{}, output chan<- interface{}, logger *zap.Logger) error
}

// Pipeline wires stages together, feeding each stage's output into the
// next stage's input.
type Pipeline struct {
	stages []Stage
	logger *zap.Logger
}

// New returns a Pipeline with no stages.
func New(logger *zap.Logger) *Pipeline {
	return &Pipeline{
		logger: logger,
	}
}

// AddStage appends a stage to the chain.
func (p *Pipeline) AddStage(stage Stage) {
	p.stages = append(p.stages, stage)
}

// Run starts every stage in its own goroutine, with the first stage reading
// from input, and blocks until all stages finish or ctx is canceled. A
// stage error is logged and closes that stage's output, which lets the
// stages after it drain and finish.
func (p *Pipeline) Run(ctx context.Context, input <-chan interface{}) error {
	if len(p.stages) == 0 {
		p.logger.Warn("no stages in pipeline")
		return nil
	}

	p.logger.Debug("starting pipeline", zap.Int("stages", len(p.stages)))

	outs := make([]chan interface{}, len(p.stages))
	for i := range outs {
		outs[i] = make(chan interface{}, stageBuffer)
	}

	var wg sync.WaitGroup
	wg.Add(len(p.stages))

	for i, stage := range p.stages {
		in := input
		if i > 0 {
			in = outs[i-1]
		}

		go func(stage Stage, in <-chan interface{}, out chan<- interface{}, idx int) {
			defer wg.Done()
			defer close(out)
			if err := stage.Execute(ctx, in, out, p.logger); err != nil {
				p.logger.Error("stage execution failed",
					zap.Int("stage", idx),
					zap.Error(err))
			}
		}(stage, in, outs[i], i)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("pipeline completed")
		return nil
	case <-ctx.Done():
		p.logger.Info("pipeline canceled", zap.Error(ctx.Err()))
		return ctx.Err()
	}
}
