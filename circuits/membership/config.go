package membership

const (
	// TreeDepth is the authentication path length of the example circuit
	// (2^TreeDepth leaf slots).
	TreeDepth = 8

	// Domain seeds the Poseidon parameter derivation. Changing it changes
	// every hash in the tree.
	Domain = "zkgadgets/membership/v1"
)
