// Package engine implements the advanced orchestration pipeline of ensemble.
//
// The Engine drives a fixed sequence of stages followed by a bounded
// refinement loop over a shared, append-only transcript, and finally asks an
// evaluator to select the artifact the run produced.
//
// # Pipeline
//
//	Visual Analysis               (analyst)
//	Initial Creative Descriptions (every creative)
//	loop:
//	    time budget spent?        -> Time limit exceeded
//	    iteration budget spent?   -> Maximum iterations reached
//	    Coordinator Review        (coordinator)
//	    quality verdict YES?      -> Quality threshold reached
//	    consensus verdict YES?    -> Consensus achieved
//	    Refinement                (creatives picked by the selector)
//	Final Selection
//
// Stages run strictly sequentially: every reply is appended before the next
// prompt is composed, so each participant sees everything said before it.
//
// # Termination
//
// Loop exits are recorded in a termination.State. The reported reason
// resolves by fixed priority (quality, consensus, max iterations, time limit)
// independent of the order in which the flags were raised.
//
// By default the time budget is sampled only between calls. With
// Config.EnforceDeadline the loop body additionally runs under a context
// bounded by the remaining budget; a call cut short by that budget ends the
// loop with "Time limit exceeded" and final selection still runs under the
// caller's context.
//
// # Errors
//
// Invalid configuration is rejected before any model call with an error
// wrapping ErrInvalidConfig. Generation failures that survive the model
// layer's retries abort the run with a *RunError carrying the failing stage
// name together with the partial transcript and results.
//
// # Observability
//
// Every lifecycle point is reported to the configured core.Observer.
// LoggingObserver adapts those events to a logging.Logger.
//
// # Example
//
//	eng, err := engine.New(model.WithRetry(openai.NewModel()), func(o *engine.Options) {
//	    o.Config.MaxIterations = 3
//	    o.Observer = engine.NewLoggingObserver(logger)
//	})
//	if err != nil {
//	    return err
//	}
//	res, err := eng.Run(ctx, core.Brief{Category: "TShirt", Description: "Cotton tee"})
package engine
