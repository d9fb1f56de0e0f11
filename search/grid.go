package search

// The dispatch grid and the kernel's workgroup size are fixed together.
// Changing the search domain means changing both this file and the kernel.
const (
	GridX uint32 = 1024 / WorkgroupX
	GridY uint32 = 1024 / WorkgroupY
	GridZ uint32 = 4096 / WorkgroupZ

	WorkgroupX uint32 = 4
	WorkgroupY uint32 = 4
	WorkgroupZ uint32 = 16
)

// Output buffer layout: slot 0 is the match count, slots 1..MaxMatches hold values.
const (
	SlotCount   = 10
	MaxMatches  = SlotCount - 1
	WordBytes   = 4
	OutputBytes = SlotCount * WordBytes
	InputBytes  = WordBytes
)

// DomainSize is the number of candidates a single dispatch covers.
func DomainSize() uint64 {
	return uint64(GridX) * uint64(GridY) * uint64(GridZ) *
		uint64(WorkgroupX) * uint64(WorkgroupY) * uint64(WorkgroupZ)
}

// InvocationsPerWorkgroup is the workgroup size the kernel must declare.
func InvocationsPerWorkgroup() uint32 {
	return WorkgroupX * WorkgroupY * WorkgroupZ
}
