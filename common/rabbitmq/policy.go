package rabbitmq

import (
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/revelfire/common-lib/common/internal/netfail"
	"github.com/revelfire/common-lib/common/retry"
)

// transientCodes lists AMQP reply codes for broker conditions that clear on
// their own: forced shutdowns, resource pressure, channel desync that a
// reconnect repairs, and exclusive queues another connection still holds.
var transientCodes = map[int]struct{}{
	amqp.NoConsumers:      {},
	amqp.ConnectionForced: {},
	amqp.ResourceLocked:   {},
	amqp.FrameError:       {},
	amqp.ChannelError:     {},
	amqp.UnexpectedFrame:  {},
	amqp.ResourceError:    {},
	amqp.InternalError:    {},
}

// terminalCodes lists AMQP reply codes that describe the request rather than
// the broker's state; repeating the request cannot change the answer.
var terminalCodes = map[int]struct{}{
	amqp.ContentTooLarge:    {},
	amqp.NoRoute:            {},
	amqp.InvalidPath:        {},
	amqp.AccessRefused:      {},
	amqp.NotFound:           {},
	amqp.PreconditionFailed: {},
	amqp.SyntaxError:        {},
	amqp.CommandInvalid:     {},
	amqp.NotAllowed:         {},
	amqp.NotImplemented:     {},
}

// Transient reports whether err represents a RabbitMQ failure worth
// retrying. Broker exceptions are classified by reply code; codes outside
// both tables defer to the broker's recoverability hint. Everything else is
// checked for network-level trouble.
func Transient(err error) bool {
	if err == nil {
		return false
	}

	var amqpErr *amqp.Error
	if errors.As(err, &amqpErr) {
		return transientCode(amqpErr)
	}

	return netfail.Transient(err)
}

func transientCode(amqpErr *amqp.Error) bool {
	if _, ok := transientCodes[amqpErr.Code]; ok {
		return true
	}

	if _, ok := terminalCodes[amqpErr.Code]; ok {
		return false
	}

	return amqpErr.Recover
}

// Policy returns a retry policy that allows another attempt only for
// transient RabbitMQ failures. Causes marked with retry.NonRetryable are
// always vetoed, regardless of classification.
//
//nolint:ireturn
func Policy() retry.Policy {
	return retry.PolicyFunc(func(cause error, _, _ int) bool {
		if retry.IsNonRetryable(cause) {
			return false
		}

		return Transient(cause)
	})
}
