package telegram

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tgbot "github.com/go-telegram/bot"

	moderrors "github.com/Conte777/moderation-bot/internal/domain/moderation/errors"
)

// classifyError maps Bot API failures the moderation flow reacts to onto domain errors
func classifyError(err error) error {
	errorMsg := err.Error()

	switch {
	case errors.Is(err, tgbot.ErrorBadRequest) &&
		(strings.Contains(errorMsg, "query is too old") || strings.Contains(errorMsg, "query ID is invalid")):
		return fmt.Errorf("%w: %w", moderrors.ErrActionExpired, err)

	case errors.Is(err, tgbot.ErrorForbidden),
		errors.Is(err, tgbot.ErrorBadRequest) && strings.Contains(errorMsg, "chat not found"):
		return fmt.Errorf("%w: %w", moderrors.ErrRecipientUnreachable, err)

	default:
		return err
	}
}

// retryDelay returns how long to wait before the next attempt, or false when err is not a rate limit
func retryDelay(err error, attempt int) (time.Duration, bool) {
	var tooMany *tgbot.TooManyRequestsError
	if !errors.As(err, &tooMany) {
		return 0, false
	}
	if tooMany.RetryAfter > 0 {
		return time.Duration(tooMany.RetryAfter) * time.Second, true
	}
	return RetryDelay * time.Duration(attempt), true
}
