package batch

// Command is the exchange descriptor payload naming what the server
// should do with the uploaded batches. It rides in the flight
// descriptor's opaque cmd bytes as CBOR.
type Command struct {
	Op        string `cbor:"op" json:"op"`
	Precision string `cbor:"precision" json:"precision"`
}
