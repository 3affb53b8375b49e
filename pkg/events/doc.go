/*
Package events provides an in-process publish/subscribe broker for
controller events: routine executions, bulk replaces, store repairs,
manual device control, and time synchronization.

Subscribers receive events on buffered channels; when a subscriber's
buffer is full the event is dropped for that subscriber rather than
blocking the publisher.

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	sub := broker.Subscribe()
	broker.Publish(events.New(events.EventRoutineExecuted, "morning preset", nil))
*/
package events
