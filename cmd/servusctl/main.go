package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	servus "github.com/servuscms/servus"
	"github.com/servuscms/servus/internal/config"
)

var (
	apiURL    string
	plaintext bool
	debug     bool
)

const opTimeout = 30 * time.Second

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "servusctl",
		Short: "Manage Servus sites, posts, notes and files",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
			log.Logger = log.Output(zerolog.ConsoleWriter{
				Out:        os.Stderr,
				TimeFormat: "2006-01-02 15:04:05",
				NoColor:    true,
			})
			if debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
				_ = os.Setenv("SERVUS_DEBUG", "true")
				log.Debug().Msg("debug logging enabled")
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
		},
	}

	cfg, err := config.Load()
	defaultURL := "https://localhost"
	if err == nil {
		defaultURL = cfg.AdminURL
	}
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", defaultURL, "Base URL of the Servus admin API")
	rootCmd.PersistentFlags().BoolVar(&plaintext, "plaintext", false, "Use ws:// and http:// site transports")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable verbose debug output")

	rootCmd.AddCommand(newListSitesCmd())
	rootCmd.AddCommand(newCreateSiteCmd())
	rootCmd.AddCommand(newListPostsCmd())
	rootCmd.AddCommand(newSavePostCmd())
	rootCmd.AddCommand(newDeletePostCmd())
	rootCmd.AddCommand(newCreateNoteCmd())
	rootCmd.AddCommand(newListFilesCmd())
	rootCmd.AddCommand(newUploadFileCmd())
	rootCmd.AddCommand(newDeleteFileCmd())

	return rootCmd
}

// newClient builds an SDK client with the dev signer from SERVUS_SECRET_KEY.
func newClient() (*servus.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("SERVUS_SECRET_KEY is not set")
	}
	s, err := servus.NewLocalSigner(cfg.SecretKey)
	if err != nil {
		return nil, err
	}

	opts := []servus.Option{servus.WithHTTPTimeout(cfg.HTTPTimeout)}
	if plaintext || cfg.Plaintext {
		opts = append(opts, servus.WithPlaintextTransport())
	}
	if debug {
		opts = append(opts, servus.WithLogger(log.Logger))
	}
	return servus.New(apiURL, s, opts...)
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func newListSitesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-sites",
		Short: "List sites owned by the signing key",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opTimeout)
			defer cancel()
			sites, err := c.LoadSites(ctx)
			if err != nil {
				return err
			}
			return printJSON(sites)
		},
	}
}

func newCreateSiteCmd() *cobra.Command {
	var domain string
	cmd := &cobra.Command{
		Use:   "create-site",
		Short: "Register a new site domain",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opTimeout)
			defer cancel()
			site, err := c.CreateSite(ctx, domain)
			if err != nil {
				return err
			}
			return printJSON(site)
		},
	}
	cmd.Flags().StringVar(&domain, "domain", "", "Domain of the new site")
	_ = cmd.MarkFlagRequired("domain")
	return cmd
}

func newListPostsCmd() *cobra.Command {
	var domain string
	cmd := &cobra.Command{
		Use:   "list-posts",
		Short: "Stream posts and pages from a site",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opTimeout)
			defer cancel()
			if err := c.LoadPosts(ctx, domain); err != nil {
				return err
			}
			return printJSON(c.Workspace().Posts())
		},
	}
	cmd.Flags().StringVar(&domain, "domain", "", "Site domain to query")
	_ = cmd.MarkFlagRequired("domain")
	return cmd
}

func newSavePostCmd() *cobra.Command {
	var domain, title, contentFile, publishedAt string
	var draft bool
	cmd := &cobra.Command{
		Use:   "save-post",
		Short: "Create or update a post, page or draft",
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(contentFile)
			if err != nil {
				return err
			}
			c, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opTimeout)
			defer cancel()

			post := &servus.Post{
				Title:       title,
				Content:     string(content),
				PublishedAt: publishedAt,
				Site:        domain,
				Draft:       draft,
			}
			if err := c.SavePost(ctx, post); err != nil {
				return err
			}
			return printJSON(post)
		},
	}
	cmd.Flags().StringVar(&domain, "domain", "", "Site domain")
	cmd.Flags().StringVar(&title, "title", "", "Post title")
	cmd.Flags().StringVar(&contentFile, "content", "", "Path to the markdown content")
	cmd.Flags().StringVar(&publishedAt, "published-at", "", "Publication timestamp in unix seconds; omit for a static page")
	cmd.Flags().BoolVar(&draft, "draft", false, "Save as a draft")
	_ = cmd.MarkFlagRequired("domain")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("content")
	return cmd
}

func newDeletePostCmd() *cobra.Command {
	var domain, slug string
	var draft bool
	cmd := &cobra.Command{
		Use:   "delete-post",
		Short: "Delete a post or page by slug",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opTimeout)
			defer cancel()
			post := &servus.Post{Site: domain, Slug: slug, Draft: draft, Persisted: true}
			return c.DeletePost(ctx, post)
		},
	}
	cmd.Flags().StringVar(&domain, "domain", "", "Site domain")
	cmd.Flags().StringVar(&slug, "slug", "", "Slug of the post to delete")
	cmd.Flags().BoolVar(&draft, "draft", false, "Target the draft kind")
	_ = cmd.MarkFlagRequired("domain")
	_ = cmd.MarkFlagRequired("slug")
	return cmd
}

func newCreateNoteCmd() *cobra.Command {
	var domain, content string
	cmd := &cobra.Command{
		Use:   "create-note",
		Short: "Publish a short note",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opTimeout)
			defer cancel()
			note := &servus.Note{Site: domain, Content: content}
			if err := c.SaveNote(ctx, note); err != nil {
				return err
			}
			return printJSON(note)
		},
	}
	cmd.Flags().StringVar(&domain, "domain", "", "Site domain")
	cmd.Flags().StringVar(&content, "content", "", "Note text")
	_ = cmd.MarkFlagRequired("domain")
	_ = cmd.MarkFlagRequired("content")
	return cmd
}

func newListFilesCmd() *cobra.Command {
	var domain string
	cmd := &cobra.Command{
		Use:   "list-files",
		Short: "List blobs stored for the signing key",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opTimeout)
			defer cancel()
			files, err := c.ListFiles(ctx, domain)
			if err != nil {
				return err
			}
			return printJSON(files)
		},
	}
	cmd.Flags().StringVar(&domain, "domain", "", "Site domain")
	_ = cmd.MarkFlagRequired("domain")
	return cmd
}

func newUploadFileCmd() *cobra.Command {
	var domain, path string
	cmd := &cobra.Command{
		Use:   "upload-file",
		Short: "Upload a file to a site's blob store",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			c, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opTimeout)
			defer cancel()
			f, err := c.UploadFile(ctx, domain, data)
			if err != nil {
				return err
			}
			return printJSON(f)
		},
	}
	cmd.Flags().StringVar(&domain, "domain", "", "Site domain")
	cmd.Flags().StringVar(&path, "file", "", "Path of the file to upload")
	_ = cmd.MarkFlagRequired("domain")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newDeleteFileCmd() *cobra.Command {
	var domain, hash string
	cmd := &cobra.Command{
		Use:   "delete-file",
		Short: "Delete a blob by content hash",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opTimeout)
			defer cancel()
			return c.DeleteFile(ctx, domain, hash)
		},
	}
	cmd.Flags().StringVar(&domain, "domain", "", "Site domain")
	cmd.Flags().StringVar(&hash, "sha256", "", "Hash of the blob to delete")
	_ = cmd.MarkFlagRequired("domain")
	_ = cmd.MarkFlagRequired("sha256")
	return cmd
}
