// Package notify carries task notifications from the services to the realtime rooms.
//
// Services build an Event and hand it to an Emitter. The Dispatcher queues events in a
// bounded buffer and delivers them from worker goroutines through a Publisher, which in
// production is the websocket hub. Delivery is at-most-once: when the buffer is full the
// event is dropped, and failed deliveries are logged but never retried.
package notify
