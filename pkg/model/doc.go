// # Nodes
//
// Node mirrors the FizzNode struct of the registry. Region is not stored on
// chain; it is derived from the eighth comma-separated field of Spec:
//
//	spec := "8,32GB,500GB,SSD,1Gbps,ubuntu,docker,us-east"
//	model.RegionFromSpec(spec) // "us-east"
//
// Specifications with fewer fields yield an empty region. No further
// validation of the specification format is performed.
//
// NodeParams is the payload of a registration. Validate catches the inputs the
// registry would reject before a transaction is signed.
//
// # Resources and leases
//
// Resources live in two parallel registries selected by Category (CPU or
// GPU). Leases are read from the compute-lease registry and filtered by node.
// Amounts are raw integers; FormatUnits renders them as decimal strings:
//
//	model.FormatUnits(lease.AcceptedPrice, 18) // "0.25"
//
// # Events
//
// NodeCreated, NodeNameUpdated, NodeSpecUpdated, NodeRegionUpdated,
// NodeProviderUpdated and PaymentUpdated are the payloads delivered by the
// event waits of the fizz package. Each carries the wallet that owns the node.
package model
