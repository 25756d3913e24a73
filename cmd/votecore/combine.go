package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/ursaminor/threshold-vote/elgamal"
	"github.com/ursaminor/threshold-vote/threshold"
)

func combineCommand() *cli.Command {
	return &cli.Command{
		Name:  "combine",
		Usage: "combine k trustees' partial decryptions of a ciphertext into plaintext",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "params", Required: true},
			&cli.StringFlag{Name: "pub", Required: true, Usage: "threshold public key file (threshold.pub)"},
			&cli.StringFlag{Name: "ciphertext", Required: true},
			&cli.StringSliceFlag{Name: "partial", Required: true, Usage: "one or more partial-decryption-set files"},
			&cli.StringFlag{Name: "out", Usage: "optional file to write the recovered plaintext to"},
		},
		Action: func(c *cli.Context) error {
			cs, err := loadCryptosystem(c.String("params"))
			if err != nil {
				return err
			}

			tpk, err := loadThresholdPublicKey(cs, c.String("pub"))
			if err != nil {
				return err
			}

			ctData, err := loadFile(c.String("ciphertext"))
			if err != nil {
				return err
			}
			ct, err := elgamal.UnmarshalCiphertext(cs, ctData)
			if err != nil {
				return err
			}

			comb := threshold.NewCombinator(tpk, ct)
			for _, path := range c.StringSlice("partial") {
				data, err := loadFile(path)
				if err != nil {
					return err
				}
				set, err := threshold.UnmarshalPartialDecryptionSet(cs, tpk, data)
				if err != nil {
					return err
				}
				if err := comb.AddPartialDecryptionSet(set); err != nil {
					return err
				}
			}

			plaintext, err := comb.DecryptToBytes()
			if err != nil {
				return err
			}

			if out := c.String("out"); out != "" {
				if err := writeBytes(out, plaintext); err != nil {
					return err
				}
			}

			log.Info().Int("plaintext_len", len(plaintext)).Msg("combined partial decryptions")
			fmt.Println(string(plaintext))
			return nil
		},
	}
}
