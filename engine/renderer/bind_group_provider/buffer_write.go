package bind_group_provider

// BufferWrite describes a single queued write into the buffer bound at Binding on Provider,
// starting Offset bytes into it.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}
