// Package rabbitmq classifies RabbitMQ failures for retry decisions.
//
// AMQP reply codes split cleanly: broker-side conditions (forced shutdown,
// resource exhaustion, locked exclusive queues) clear on their own and are
// worth another attempt, while protocol and topology errors (access refused,
// missing queue, precondition failed) will fail the same way every time.
// Unknown codes fall back to the broker's own soft-error hint. The package
// only inspects errors produced by amqp091-go callers; it never dials.
package rabbitmq
