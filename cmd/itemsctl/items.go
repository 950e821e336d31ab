package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/samvad-hq/mercari-items-client/internal/domain"
	"github.com/samvad-hq/mercari-items-client/internal/storage"
)

func addKeepFlag(fs *pflag.FlagSet, keep *bool) {
	fs.BoolVar(keep, "keep", false, "Keep fetched images allocated and print their blob URLs")
}

// warnEphemeral notes that kept URLs die with the process on the memory backend.
func (c *cli) warnEphemeral() {
	if c.cfg.StorageType != storage.TypeBBolt {
		c.log.WarnObj("kept blob urls only live for this process", "storage_type", c.cfg.StorageType)
	}
}

func newListCmd(c *cli) *cobra.Command {
	var withImages, keep bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := c.app.Client()
			if !withImages {
				resp, err := client.ListItems(cmd.Context())
				if err != nil {
					return err
				}
				return c.printJSON(resp)
			}

			items, err := client.ListItemsWithImages(cmd.Context())
			if err != nil {
				return err
			}
			if keep {
				c.warnEphemeral()
				return c.printJSON(items)
			}
			defer func() {
				if err := client.ReleaseItems(items); err != nil {
					c.log.WarnObj("release images failed", "error", err.Error())
				}
			}()
			return c.printJSON(items)
		},
	}
	cmd.Flags().BoolVar(&withImages, "images", false, "Fetch each item's image and attach a blob URL")
	addKeepFlag(cmd.Flags(), &keep)
	return cmd
}

func newImageCmd(c *cli) *cobra.Command {
	var output string
	var keep bool

	cmd := &cobra.Command{
		Use:   "image IMAGE_NAME",
		Short: "Download an item image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := c.app.Client()
			ref := domain.ImageReference(args[0])

			u, err := client.FetchImage(cmd.Context(), ref)
			if err != nil {
				return err
			}
			if !keep {
				defer func() {
					if err := client.ReleaseImage(u); err != nil {
						c.log.WarnObj("release image failed", "error", err.Error())
					}
				}()
			}

			blob, err := client.OpenImage(u)
			if err != nil {
				return err
			}

			switch output {
			case "-":
				if _, err := c.out.Write(blob.Data); err != nil {
					return fmt.Errorf("write image: %w", err)
				}
			default:
				path := output
				if path == "" {
					path = filepath.Base(ref)
				}
				if err := os.WriteFile(path, blob.Data, 0o644); err != nil {
					return fmt.Errorf("write image: %w", err)
				}
				c.log.InfoObj("image saved", "image", map[string]any{
					"path":         path,
					"bytes":        len(blob.Data),
					"content_type": blob.ContentType,
				})
			}

			if keep {
				c.warnEphemeral()
				w := c.out
				if output == "-" {
					w = os.Stderr
				}
				fmt.Fprintln(w, u.String())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: image name, - for stdout)")
	addKeepFlag(cmd.Flags(), &keep)
	return cmd
}

func newReleaseCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "release BLOB_URL",
		Short: "Release a blob URL kept by list or image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Client().ReleaseImage(domain.ObjectURL(args[0]))
		},
	}
}

func newCreateCmd(c *cli) *cobra.Command {
	var name, category, imageName, imageFile string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := domain.CreateItemInput{Name: name, Category: category}
			switch {
			case imageFile != "":
				data, err := os.ReadFile(imageFile)
				if err != nil {
					return fmt.Errorf("read image file: %w", err)
				}
				in.Image = domain.ImageFile(filepath.Base(imageFile), data)
			default:
				in.Image = domain.ImageName(imageName)
			}

			resp, err := c.app.Client().CreateItem(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "%d %s\n", resp.StatusCode(), resp.Body())
			if resp.StatusCode() >= 300 {
				return fmt.Errorf("create item: server responded %d", resp.StatusCode())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Item name (required)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Item category (required)")
	cmd.Flags().StringVar(&imageName, "image-name", "", "Image filename already known to the server")
	cmd.Flags().StringVar(&imageFile, "image-file", "", "Local image file to upload")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("category")
	cmd.MarkFlagsMutuallyExclusive("image-name", "image-file")
	cmd.MarkFlagsOneRequired("image-name", "image-file")
	return cmd
}
