package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/sealjohn/internal/security/digest"
	"github.com/dropDatabas3/sealjohn/internal/security/masterkey"
	"github.com/dropDatabas3/sealjohn/internal/security/password"
	"github.com/dropDatabas3/sealjohn/internal/security/random"
)

const masterKeyEnv = "CRYPTO_MASTER_KEY"

type printer struct {
	w   io.Writer
	out string // "json" | "text"
}

// print en text muestra "clave=valor" en orden estable.
func (p *printer) print(keys []string, v map[string]any) error {
	if p.out == "json" {
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	for _, k := range keys {
		if _, err := fmt.Fprintf(p.w, "%s=%v\n", k, v[k]); err != nil {
			return err
		}
	}
	return nil
}

// newRootCmd recibe getenv para poder testear sin tocar el entorno del proceso.
func newRootCmd(getenv func(string) string) *cobra.Command {
	out := getenv("SEALCTL_OUT")
	if out == "" {
		out = "text"
	}
	p := &printer{}

	root := &cobra.Command{
		Use:           "sealctl",
		Short:         "Utilidades offline de claves, hashes y firmas",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if out != "json" && out != "text" {
				return fmt.Errorf("--out inválido: %q (json|text)", out)
			}
			p.w = cmd.OutOrStdout()
			p.out = out
			return nil
		},
	}
	root.PersistentFlags().StringVar(&out, "out", out, "Formato de salida: json|text (env SEALCTL_OUT)")

	signer := func() (*digest.Signer, error) {
		raw := strings.TrimSpace(getenv(masterKeyEnv))
		if raw == "" {
			return nil, fmt.Errorf("falta %s", masterKeyEnv)
		}
		key, err := masterkey.Parse(raw)
		if err != nil {
			return nil, err
		}
		defer func() {
			for i := range key {
				key[i] = 0
			}
		}()
		return digest.NewSigner(key)
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "gen-master-key",
			Short: "Genera una clave maestra nueva (base64 de 32 bytes) para " + masterKeyEnv,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				k, err := masterkey.Generate(random.System())
				if err != nil {
					return err
				}
				return p.print([]string{"master_key"}, map[string]any{"master_key": k})
			},
		},
		newHashCmd(p),
		&cobra.Command{
			Use:   "verify-hash <data> <hash>",
			Short: "Verifica data contra un hash SHA-256 o PHC Argon2id",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				h, err := digest.NewHasher(password.Default)
				if err != nil {
					return err
				}
				return p.print([]string{"valid"}, map[string]any{"valid": h.VerifyHash(args[0], args[1])})
			},
		},
		newSignCmd(p, signer),
		&cobra.Command{
			Use:   "verify <data> <signature> <timestamp>",
			Short: "Verifica una firma HMAC-SHA256 (requiere " + masterKeyEnv + ")",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := signer()
				if err != nil {
					return err
				}
				ts, err := digest.ParseTimestamp(args[2])
				if err != nil {
					return err
				}
				return p.print([]string{"valid"}, map[string]any{"valid": s.Verify(args[0], args[1], ts)})
			},
		},
	)
	return root
}

func newHashCmd(p *printer) *cobra.Command {
	var (
		salt       string
		randomSalt bool
	)
	cmd := &cobra.Command{
		Use:   "hash <data>",
		Short: "SHA-256 sin salt; Argon2id (PHC) con --salt o --random-salt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := digest.NewHasher(password.Default)
			if err != nil {
				return err
			}
			var sp *string
			switch {
			case randomSalt:
				s, err := digest.NewSalt(random.System())
				if err != nil {
					return err
				}
				sp = &s
			case cmd.Flags().Changed("salt"):
				sp = &salt
			}
			res, err := h.HashData(args[0], sp)
			if err != nil {
				return err
			}
			return p.print([]string{"hash", "salt", "algorithm"}, map[string]any{
				"hash": res.Hash, "salt": res.Salt, "algorithm": res.Algorithm,
			})
		},
	}
	cmd.Flags().StringVar(&salt, "salt", "", "salt (8 a 64 bytes, texto o base64)")
	cmd.Flags().BoolVar(&randomSalt, "random-salt", false, "genera un salt aleatorio de 16 bytes")
	cmd.MarkFlagsMutuallyExclusive("salt", "random-salt")
	return cmd
}

func newSignCmd(p *printer, signer func() (*digest.Signer, error)) *cobra.Command {
	var label string
	cmd := &cobra.Command{
		Use:   "sign <data>",
		Short: "Firma data con HMAC-SHA256 (requiere " + masterKeyEnv + ")",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := signer()
			if err != nil {
				return err
			}
			sig := s.Sign(args[0], label)
			return p.print([]string{"signature", "key_id", "timestamp"}, map[string]any{
				"signature": sig.Value,
				"key_id":    sig.KeyID,
				"timestamp": digest.FormatTimestamp(sig.Timestamp),
			})
		},
	}
	cmd.Flags().StringVar(&label, "key-id", digest.DefaultKeyLabel, "etiqueta informativa de la clave")
	return cmd
}
