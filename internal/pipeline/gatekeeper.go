package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/civicaudit/civicgate/internal/judge"
	"github.com/civicaudit/civicgate/internal/model"
)

// validateGenerative replaces the four gates with a single multimodal
// judge call. The judge's verdict is taken at face value; when the
// judge itself fails, the configured failure policy decides the
// outcome.
func (p *Pipeline) validateGenerative(ctx context.Context, sub model.Submission) model.Verdict {
	v := model.Verdict{}
	v.Trace("judge_model", p.cfg.Judge.Model)

	jctx, cancel := context.WithTimeout(ctx, p.cfg.Judge.Timeout())
	defer cancel()

	res, err := p.judge.JudgeAlignment(jctx, sub.Image, sub.MIMEType, sub.Description)
	if err != nil {
		p.log.Warn("judge call failed, applying failure policy",
			zap.String("policy", string(p.policy)),
			zap.Error(err))
		v.Trace("judge_error", err.Error())
		if p.policy == judge.FailOpen {
			v.Accepted = true
			v.Reason = "Judge unavailable, accepted by failure policy"
		} else {
			v.Reason = "Judge unavailable, rejected by failure policy"
		}
		return v
	}

	v.Trace("judge_reason", res.Reason)
	v.Accepted = res.IsMatch
	if res.IsMatch {
		v.Reason = "Validated civic issue"
	} else {
		v.Reason = res.Reason
		if v.Reason == "" {
			v.Reason = "Image and description do not describe the same civic issue"
		}
	}
	return v
}
