/*Package mqtt implements the live broker connection of a monitoring session.

The connection manager keeps a single MQTT 3.1.1 client alive against the
farm broker, usually over a secured WebSocket. On connect it subscribes to
the five per-farm topic patterns with at-most-once delivery; after any
transport loss it retries at a fixed interval forever, until it is
explicitly closed. Inbound frames are decoded by the router into typed
events and dispatched synchronously, in arrival order, to the handlers
registered per gateway class and action.

A malformed message is logged and dropped, it never tears down the
connection. The engine carries only incremental updates; the consistent
baseline comes from the inventory fetch of the farm API.
*/
package mqtt
