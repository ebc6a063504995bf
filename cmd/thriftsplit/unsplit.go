package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"thriftsplit"
	"thriftsplit/internal/output"
	"thriftsplit/internal/streamset"
	"thriftsplit/internal/tcore"
)

func newUnsplitCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "unsplit <in-dir> <out-file>",
		Short: "Reassemble a Thrift message from its split streams",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnsplit(args[0], args[1], format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "wire format: compact or binary (defaults to the manifest's)")
	return cmd
}

func runUnsplit(inDir, outFile, formatOverride string) error {
	manifest, err := output.ReadManifest(inDir)
	if err != nil {
		return fmt.Errorf("reading manifest: %w", err)
	}
	formatName := manifest.Format
	if formatOverride != "" {
		formatName = formatOverride
	}
	fmtID, err := parseFormat(formatName)
	if err != nil {
		return err
	}

	var in thriftsplit.DecodeInput

	for i, name := range manifest.Singletons {
		data, err := output.ReadStream(inDir, name)
		if err != nil {
			return err
		}
		in.Singletons = append(in.Singletons, streamset.SingletonInput{ID: tcore.SingletonID(i), Bytes: data})
	}

	lensByID := make(map[int]string, len(manifest.StringLenIDs))
	for i, id := range manifest.StringLenIDs {
		lensByID[id] = manifest.StringLens[i]
	}
	for i, name := range manifest.Variables {
		id := manifest.VariableIDs[i]
		data, err := output.ReadStream(inDir, name)
		if err != nil {
			return err
		}
		vin := streamset.VariableInput{ID: tcore.LogicalID(id), Bytes: data}
		if lensName, ok := lensByID[id]; ok {
			lenData, err := output.ReadStream(inDir, lensName)
			if err != nil {
				return err
			}
			vin.LenBytes = lenData
		}
		in.Variables = append(in.Variables, vin)
	}

	for idx, name := range manifest.Clusters {
		data, err := output.ReadStream(inDir, name)
		if err != nil {
			return err
		}
		in.ClusterData = append(in.ClusterData, data)

		var lenData []byte
		if idx < len(manifest.ClusterStrLens) && manifest.ClusterStrLens[idx] != "" {
			lenData, err = output.ReadStream(inDir, manifest.ClusterStrLens[idx])
			if err != nil {
				return err
			}
		}
		in.ClusterLenData = append(in.ClusterLenData, lenData)
	}

	in.ClusterLengths, err = output.ReadStream(inDir, manifest.ClusterLengths)
	if err != nil {
		return err
	}

	log.Printf("unsplitting from %s (%s)", inDir, fmtID)
	out, err := thriftsplit.Decode(in, fmtID)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	if err := os.WriteFile(outFile, out, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", outFile, err)
	}
	log.Printf("wrote %d bytes to %s", len(out), outFile)
	return nil
}
