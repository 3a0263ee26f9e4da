package main

import (
	"fmt"

	"mask-mender/internal/models"
	"mask-mender/internal/opencv/safe"

	"github.com/spf13/cobra"
)

func newYellowCmd(e *env) *cobra.Command {
	opts := &fillOptions{}
	cmd := &cobra.Command{
		Use:   "yellow",
		Short: "Inpaint the yellow-marked region of an image",
		Long: `Detects saturated yellow pixels (HSV range from the configuration,
H 20-30 and S, V 100-255 by default), uses them as the mask and fills them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := opts.run(cmd.Context(), e, func(original *models.ImageData) (*safe.Mat, error) {
				return e.masks.Acquire(original, models.MaskYellow)
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	opts.bind(cmd)
	return cmd
}

func newMaskCmd(e *env) *cobra.Command {
	opts := &fillOptions{}
	var maskPath string
	cmd := &cobra.Command{
		Use:   "mask",
		Short: "Inpaint an image using a mask image",
		Long: `Fills every pixel of --src where the same pixel of --mask is not black.
Both images must have the same size.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := opts.run(cmd.Context(), e, func(original *models.ImageData) (*safe.Mat, error) {
				picture, err := e.images.LoadFile(cmd.Context(), maskPath)
				if err != nil {
					return nil, err
				}
				defer picture.Close()
				return e.masks.FromImage(original, picture)
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	opts.bind(cmd)
	cmd.Flags().StringVar(&maskPath, "mask", "", "mask image; non-black pixels are filled")
	_ = cmd.MarkFlagRequired("mask")
	return cmd
}
