package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/kozaktomas/frushion/internal/constants"
	"github.com/kozaktomas/frushion/internal/expression"
	"github.com/kozaktomas/frushion/internal/frame"
)

// ExpressionClassifier classifies frames through /analyze_expression.
type ExpressionClassifier struct {
	client *Client
}

func NewExpressionClassifier(c *Client) *ExpressionClassifier {
	return &ExpressionClassifier{client: c}
}

func (r *ExpressionClassifier) Name() string {
	return "remote"
}

// Classify sends the encoded frame. A rejected analysis means no face was found.
func (r *ExpressionClassifier) Classify(ctx context.Context, f *frame.Frame) (expression.Result, error) {
	data, err := f.Encode(constants.MaxImageSize, constants.JPEGQuality)
	if err != nil {
		return expression.Result{}, err
	}

	resp, err := r.client.AnalyzeExpression(ctx, data)
	if err != nil {
		if errors.Is(err, ErrRejected) {
			return expression.Result{}, fmt.Errorf("%w: %s", expression.ErrNoFace, resp.Message)
		}
		return expression.Result{}, err
	}

	emoji := resp.Emoji
	if emoji == "" {
		emoji = expression.Emoji(resp.Expression)
	}
	return expression.Result{
		Expression: resp.Expression,
		Emoji:      emoji,
		Message:    resp.Message,
		Animation:  expression.Animation(resp.Expression),
	}, nil
}
