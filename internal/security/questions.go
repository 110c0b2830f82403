package security

import (
	"context"
	"fmt"
)

const requiredQuestionCount = 3

// SetSecurityQuestions replaces the user's full question set. Exactly three
// question/answerHash pairs are required; anything else is rejected so a
// partial set is never persisted. Upserts like UpdateConfig.
func (e *Engine) SetSecurityQuestions(ctx context.Context, userID string, questions []Question) (*Config, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	if len(questions) != requiredQuestionCount {
		return nil, fmt.Errorf("%w: %d security questions required", ErrInvalidInput, requiredQuestionCount)
	}
	for _, q := range questions {
		if q.Question == "" || q.AnswerHash == "" {
			return nil, fmt.Errorf("%w: question and answerHash required", ErrInvalidInput)
		}
	}

	cfg, err := e.store.Get(ctx, userID)
	if err == ErrConfigNotFound {
		cfg = &Config{UserID: userID}
	} else if err != nil {
		return nil, err
	}

	now := e.now()
	cfg.SecurityQuestions = append([]Question(nil), questions...)
	cfg.SecurityQuestionsLastUpdatedAt = &now
	cfg.UpdatedAt = now

	if err := e.store.Save(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// VerifySecurityAnswer checks one answer against the stored set. Entries are
// selected by literal question text, not position; with duplicate question
// text every matching entry is tried and any hit is enough. A user with no
// config or an empty set reports ErrQuestionsNotConfigured.
func (e *Engine) VerifySecurityAnswer(ctx context.Context, userID, question, answer string) error {
	cfg, err := e.store.Get(ctx, userID)
	if err == ErrConfigNotFound {
		return ErrQuestionsNotConfigured
	}
	if err != nil {
		return err
	}
	if len(cfg.SecurityQuestions) == 0 {
		return ErrQuestionsNotConfigured
	}

	matched := false
	for _, q := range cfg.SecurityQuestions {
		if q.Question != question {
			continue
		}
		if ok, verr := e.hasher.Verify(answer, q.AnswerHash); verr == nil && ok {
			matched = true
		}
	}
	if !matched {
		return ErrIncorrectAnswer
	}

	now := e.now()
	cfg.LastVerifiedAt = &now
	return e.store.Save(ctx, cfg)
}
