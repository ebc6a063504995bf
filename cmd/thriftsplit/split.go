package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"thriftsplit"
	"thriftsplit/internal/output"
	"thriftsplit/internal/tcore"
)

func newSplitCmd() *cobra.Command {
	var format string
	var configPath string

	cmd := &cobra.Command{
		Use:   "split <thrift-file> <out-dir>",
		Short: "Split a Thrift message into its singleton and variable streams",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(args[0], args[1], format, configPath)
		},
	}
	cmd.Flags().StringVar(&format, "format", "compact", "wire format: compact or binary")
	cmd.Flags().StringVar(&configPath, "config", "", "path to the JSON extraction plan")
	return cmd
}

func runSplit(thriftFile, outDir, formatName, configPath string) error {
	fmtID, err := parseFormat(formatName)
	if err != nil {
		return err
	}

	src, err := os.ReadFile(thriftFile)
	if err != nil {
		return fmt.Errorf("reading %s: %w", thriftFile, err)
	}

	var cliCfg cliConfig
	if configPath != "" {
		cliCfg, err = loadCLIConfig(configPath)
		if err != nil {
			return err
		}
	}
	config, err := buildEncoderConfig(cliCfg)
	if err != nil {
		return fmt.Errorf("building config: %w", err)
	}

	log.Printf("splitting %s (%d bytes, %s)", thriftFile, len(src), fmtID)
	result, err := thriftsplit.Encode(src, fmtID, config)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	manifest := output.Manifest{Format: formatName}

	for id := 0; id < tcore.NumSingletonIDs; id++ {
		sid := tcore.SingletonID(id)
		name := "singleton_" + sid.String() + ".bin"
		if err := output.WriteStream(outDir, name, result.Streams.Singleton(sid).Bytes()); err != nil {
			return err
		}
		manifest.Singletons = append(manifest.Singletons, name)
	}

	for _, lid := range config.UnclusteredStreams() {
		name := "variable_" + strconv.Itoa(int(lid)) + ".bin"
		stream := result.Streams.Variable(lid)
		if err := output.WriteStream(outDir, name, stream.Bytes()); err != nil {
			return err
		}
		manifest.Variables = append(manifest.Variables, name)
		manifest.VariableIDs = append(manifest.VariableIDs, int(lid))

		if lens := result.Streams.StringLength(lid); lens != nil {
			lensName := "variable_" + strconv.Itoa(int(lid)) + "_lens.bin"
			if err := output.WriteStream(outDir, lensName, lens.Bytes()); err != nil {
				return err
			}
			manifest.StringLens = append(manifest.StringLens, lensName)
			manifest.StringLenIDs = append(manifest.StringLenIDs, int(lid))
		}
	}

	for idx, cl := range result.Clusters {
		name := "cluster_" + strconv.Itoa(idx) + ".bin"
		if err := output.WriteStream(outDir, name, cl.Data); err != nil {
			return err
		}
		manifest.Clusters = append(manifest.Clusters, name)

		lensName := ""
		if cl.Outcome == tcore.OutcomeVSF {
			lensName = "cluster_" + strconv.Itoa(idx) + "_lens.bin"
			if err := output.WriteStream(outDir, lensName, cl.LenData); err != nil {
				return err
			}
		}
		manifest.ClusterStrLens = append(manifest.ClusterStrLens, lensName)
	}

	manifest.ClusterLengths = "cluster_lengths.bin"
	if err := output.WriteStream(outDir, manifest.ClusterLengths, result.Streams.ClusterLengths().Bytes()); err != nil {
		return err
	}

	if err := output.WriteManifest(outDir, manifest); err != nil {
		return err
	}
	log.Printf("wrote %d singleton, %d variable, %d cluster streams to %s",
		len(manifest.Singletons), len(manifest.Variables), len(manifest.Clusters), outDir)
	return nil
}

func parseFormat(name string) (thriftsplit.Format, error) {
	switch name {
	case "compact":
		return thriftsplit.FormatCompact, nil
	case "binary":
		return thriftsplit.FormatBinary, nil
	default:
		return 0, fmt.Errorf("unknown format %q (want compact or binary)", name)
	}
}
