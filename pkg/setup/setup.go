// Package setup compiles circuits and manages proving/verifying keys for the
// example binaries and tests. It is harness code around the gadget library,
// not part of its contract.
package setup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/plonk"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark/frontend/cs/scs"
	"github.com/consensys/gnark/test/unsafekzg"
	"github.com/rs/zerolog"
)

var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}).
	With().Timestamp().Str("package", "setup").Logger()

// Backend selects which proof system to use for a circuit.
type Backend int

const (
	Groth16Backend Backend = iota
	PlonkBackend
)

// CompileCircuit compiles a gnark circuit into an R1CS constraint system.
func CompileCircuit(circuit frontend.Circuit) (constraint.ConstraintSystem, error) {
	return CompileCircuitForBackend(circuit, Groth16Backend)
}

// CompileCircuitForBackend compiles a circuit using the builder matching the
// given backend.
func CompileCircuitForBackend(circuit frontend.Circuit, b Backend) (constraint.ConstraintSystem, error) {
	var builder frontend.NewBuilder
	switch b {
	case Groth16Backend:
		builder = r1cs.NewBuilder
	case PlonkBackend:
		builder = scs.NewBuilder
	default:
		return nil, fmt.Errorf("unknown backend: %d", b)
	}
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), builder, circuit)
	if err != nil {
		return nil, fmt.Errorf("compile circuit: %w", err)
	}
	return ccs, nil
}

// DevSetup performs a single-party Groth16 setup (NOT for production) and
// writes the keys to outputDir.
func DevSetup(circuit frontend.Circuit, outputDir, circuitName string) error {
	log.Warn().Str("circuit", circuitName).Msg("single-party setup (1-of-1 trust assumption), do not use these keys in production")

	ccs, err := CompileCircuit(circuit)
	if err != nil {
		return err
	}
	log.Info().Int("constraints", ccs.GetNbConstraints()).Msg("circuit compiled")

	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return fmt.Errorf("groth16 setup: %w", err)
	}
	return ExportKeys(pk, vk, outputDir, circuitName)
}

// PlonkDevSetup performs a single-party PLONK setup with an unsafe KZG SRS
// (NOT for production) and writes the keys to outputDir.
func PlonkDevSetup(circuit frontend.Circuit, outputDir, circuitName string) error {
	log.Warn().Str("circuit", circuitName).Msg("unsafe KZG SRS (1-of-1 trust assumption), do not use these keys in production")

	ccs, err := CompileCircuitForBackend(circuit, PlonkBackend)
	if err != nil {
		return err
	}
	log.Info().Int("constraints", ccs.GetNbConstraints()).Msg("circuit compiled")

	srs, srsLagrange, err := unsafekzg.NewSRS(ccs)
	if err != nil {
		return fmt.Errorf("generate unsafe KZG SRS: %w", err)
	}
	pk, vk, err := plonk.Setup(ccs, srs, srsLagrange)
	if err != nil {
		return fmt.Errorf("plonk setup: %w", err)
	}
	return ExportPlonkKeys(pk, vk, outputDir, circuitName)
}

// ExportKeys writes the Groth16 proving and verifying keys to outputDir as
// <circuitName>_prover.key and <circuitName>_verifier.key.
func ExportKeys(pk groth16.ProvingKey, vk groth16.VerifyingKey, outputDir, circuitName string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	pkPath := filepath.Join(outputDir, circuitName+"_prover.key")
	if err := saveObject(pkPath, pk); err != nil {
		return err
	}
	vkPath := filepath.Join(outputDir, circuitName+"_verifier.key")
	if err := saveObject(vkPath, vk); err != nil {
		return err
	}
	log.Info().Str("pk", pkPath).Str("vk", vkPath).Msg("keys exported")
	return nil
}

// LoadKeys loads Groth16 proving and verifying keys written by ExportKeys.
func LoadKeys(dir, circuitName string) (groth16.ProvingKey, groth16.VerifyingKey, error) {
	pk := groth16.NewProvingKey(ecc.BN254)
	if err := loadObject(filepath.Join(dir, circuitName+"_prover.key"), pk); err != nil {
		return nil, nil, err
	}
	vk := groth16.NewVerifyingKey(ecc.BN254)
	if err := loadObject(filepath.Join(dir, circuitName+"_verifier.key"), vk); err != nil {
		return nil, nil, err
	}
	return pk, vk, nil
}

// ExportPlonkKeys writes PLONK proving and verifying keys to outputDir.
func ExportPlonkKeys(pk plonk.ProvingKey, vk plonk.VerifyingKey, outputDir, circuitName string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	pkPath := filepath.Join(outputDir, circuitName+"_prover.key")
	if err := saveObject(pkPath, pk); err != nil {
		return err
	}
	vkPath := filepath.Join(outputDir, circuitName+"_verifier.key")
	if err := saveObject(vkPath, vk); err != nil {
		return err
	}
	log.Info().Str("pk", pkPath).Str("vk", vkPath).Msg("keys exported")
	return nil
}

// LoadPlonkKeys loads PLONK proving and verifying keys written by
// ExportPlonkKeys.
func LoadPlonkKeys(dir, circuitName string) (plonk.ProvingKey, plonk.VerifyingKey, error) {
	pk := plonk.NewProvingKey(ecc.BN254)
	if err := loadObject(filepath.Join(dir, circuitName+"_prover.key"), pk); err != nil {
		return nil, nil, err
	}
	vk := plonk.NewVerifyingKey(ecc.BN254)
	if err := loadObject(filepath.Join(dir, circuitName+"_verifier.key"), vk); err != nil {
		return nil, nil, err
	}
	return pk, vk, nil
}

func saveObject(path string, obj io.WriterTo) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if _, err := obj.WriteTo(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func loadObject(path string, obj io.ReaderFrom) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if _, err := obj.ReadFrom(f); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}
