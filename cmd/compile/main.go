package main

import (
	"fmt"
	"log"
	"os"

	"github.com/consensys/gnark/frontend"

	"github.com/provelab/zkgadgets/circuits/membership"
	"github.com/provelab/zkgadgets/pkg/poseidon"
	"github.com/provelab/zkgadgets/pkg/setup"
)

// CircuitEntry pairs a circuit constructor with its proof backend.
type CircuitEntry struct {
	NewCircuit func() (frontend.Circuit, error)
	Backend    setup.Backend
}

func newMembershipCircuit() (frontend.Circuit, error) {
	params, err := poseidon.NewDefaultParameters(membership.Domain, 2)
	if err != nil {
		return nil, err
	}
	return membership.NewCircuit(params, membership.TreeDepth), nil
}

// circuitRegistry maps circuit names to their entries.
var circuitRegistry = map[string]CircuitEntry{
	"membership":       {NewCircuit: newMembershipCircuit, Backend: setup.Groth16Backend},
	"membership-plonk": {NewCircuit: newMembershipCircuit, Backend: setup.PlonkBackend},
}

func main() {
	if len(os.Args) < 3 {
		printUsage()
		os.Exit(1)
	}

	circuitName := os.Args[1]
	entry, ok := circuitRegistry[circuitName]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown circuit: %s\n", circuitName)
		fmt.Fprintf(os.Stderr, "Available circuits: ")
		for name := range circuitRegistry {
			fmt.Fprintf(os.Stderr, "%s ", name)
		}
		fmt.Fprintln(os.Stderr)
		os.Exit(1)
	}

	switch os.Args[2] {
	case "dev":
		circuit, err := entry.NewCircuit()
		if err != nil {
			log.Fatal(err)
		}
		switch entry.Backend {
		case setup.Groth16Backend:
			if err := setup.DevSetup(circuit, ".", circuitName); err != nil {
				log.Fatal(err)
			}
		case setup.PlonkBackend:
			if err := setup.PlonkDevSetup(circuit, ".", circuitName); err != nil {
				log.Fatal(err)
			}
		}
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage:
  go run ./cmd/compile <circuit> dev    Dev mode (single-party/unsafe setup, NOT for production)

Available circuits: membership (Groth16), membership-plonk (PLONK)

Keys are written to the current directory as <circuit>_prover.key and
<circuit>_verifier.key.`)
}
