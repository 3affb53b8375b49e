/*
Package actuator defines the ActuationSink contract: the synchronous,
fire-and-forget hardware channel writer that both routine execution and
manual device control funnel through.

Two sinks are provided. ModbusSink drives a Modbus TCP channel driver,
mapping channel i to holding register base+i. NopSink discards writes
for development and tests.

The scheduler never consumes a failure signal from the sink; write
errors are logged and counted by the controller, nothing more.
*/
package actuator
