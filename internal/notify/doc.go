// Package notify delivers session reminders to participants.
//
// The Sender walks the pending recipients of one upcoming reminder in order,
// one delivery at a time with a fixed pause between calls, and marks each
// assignment only after its own delivery succeeded. Delivery transports plug
// in through the Delivery interface; WhatsAppClient talks to the Green API.
package notify
