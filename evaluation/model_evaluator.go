package evaluation

import (
	"context"
	"fmt"
	"slices"
	"text/template"

	"github.com/hupe1980/ensemble/core"
	"github.com/hupe1980/ensemble/internal/util"
	"github.com/hupe1980/ensemble/logging"
	"github.com/hupe1980/ensemble/model"
)

// Options configures a ModelEvaluator.
type Options struct {
	QualityTemplate   string
	ConsensusTemplate string
	SelectorTemplate  string
	FinalTemplate     string
	Logger            logging.Logger
}

// ModelEvaluator implements Evaluator by prompting a model.Model.
// Evaluations that lack enough material return a conservative answer
// without calling the model.
type ModelEvaluator struct {
	model     model.Model
	logger    logging.Logger
	quality   *template.Template
	consensus *template.Template
	selector  *template.Template
	final     *template.Template
}

var _ Evaluator = (*ModelEvaluator)(nil)

// NewModelEvaluator compiles the evaluator templates.
func NewModelEvaluator(m model.Model, optFns ...func(o *Options)) (*ModelEvaluator, error) {
	opts := Options{
		QualityTemplate:   DefaultQualityTemplate,
		ConsensusTemplate: DefaultConsensusTemplate,
		SelectorTemplate:  DefaultSelectorTemplate,
		FinalTemplate:     DefaultFinalTemplate,
		Logger:            logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	e := &ModelEvaluator{model: m, logger: logging.OrNoOp(opts.Logger)}

	var err error
	if e.quality, err = util.ParseTemplate("quality", opts.QualityTemplate); err != nil {
		return nil, err
	}
	if e.consensus, err = util.ParseTemplate("consensus", opts.ConsensusTemplate); err != nil {
		return nil, err
	}
	if e.selector, err = util.ParseTemplate("selector", opts.SelectorTemplate); err != nil {
		return nil, err
	}
	if e.final, err = util.ParseTemplate("final", opts.FinalTemplate); err != nil {
		return nil, err
	}
	return e, nil
}

// EvaluateQuality implements QualityEvaluator.
func (e *ModelEvaluator) EvaluateQuality(ctx context.Context, in Input) (bool, error) {
	descriptions := Descriptions(in)
	if len(descriptions) < 2 {
		return false, nil
	}
	reply, err := e.ask(ctx, e.quality, promptData{
		Category:        in.Brief.Category,
		BaseDescription: in.Brief.Description,
		Descriptions:    core.Render(slices.Values(descriptions)),
	})
	if err != nil {
		return false, fmt.Errorf("quality evaluation: %w", err)
	}
	return IsQualityReached(reply), nil
}

// EvaluateConsensus implements ConsensusEvaluator.
func (e *ModelEvaluator) EvaluateConsensus(ctx context.Context, in Input) (bool, error) {
	latest, ok := LatestStageDescriptions(in)
	if !ok || len(latest) < 2 {
		return false, nil
	}
	reply, err := e.ask(ctx, e.consensus, promptData{
		Category:     in.Brief.Category,
		Descriptions: core.Render(slices.Values(latest)),
	})
	if err != nil {
		return false, fmt.Errorf("consensus evaluation: %w", err)
	}
	return IsConsensusReached(reply), nil
}

// SelectRefiners implements RefinerSelector.
func (e *ModelEvaluator) SelectRefiners(ctx context.Context, in Input) ([]string, error) {
	creatives := slices.Clone(in.Lineup.CreativeIDs)
	feedback, ok := in.Transcript.LastMatching(core.FromSender(in.Lineup.CoordinatorID))
	if !ok {
		return creatives, nil
	}
	limit := in.MaxRefiners
	if limit <= 0 || limit > len(creatives) {
		limit = len(creatives)
	}
	reply, err := e.ask(ctx, e.selector, promptData{
		CoordinatorID: in.Lineup.CoordinatorID,
		Feedback:      feedback.Content,
		Candidates:    creatives,
		Max:           limit,
	})
	if err != nil {
		return nil, fmt.Errorf("refiner selection: %w", err)
	}
	selected := ParseSelection(reply, creatives, in.Lineup.DefaultRefinerID, in.MaxRefiners)
	e.logger.Debug("Selected refiners", "reply", reply, "selected", selected)
	return selected, nil
}

// SelectFinal implements FinalSelector.
func (e *ModelEvaluator) SelectFinal(ctx context.Context, in Input) (string, error) {
	descriptions := Descriptions(in)
	if len(descriptions) == 0 {
		return NoDescriptions, nil
	}
	reply, err := e.ask(ctx, e.final, promptData{
		Category:        in.Brief.Category,
		BaseDescription: in.Brief.Description,
		Descriptions:    core.Render(slices.Values(descriptions)),
	})
	if err != nil {
		return "", fmt.Errorf("final selection: %w", err)
	}
	return reply, nil
}

func (e *ModelEvaluator) ask(ctx context.Context, tmpl *template.Template, data promptData) (string, error) {
	prompt, err := util.Execute(tmpl, data)
	if err != nil {
		return "", err
	}
	return model.GenerateText(ctx, e.model, prompt)
}
