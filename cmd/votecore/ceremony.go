package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/ursaminor/threshold-vote/config"
	"github.com/ursaminor/threshold-vote/cryptosystem"
	"github.com/ursaminor/threshold-vote/elgamal"
	"github.com/ursaminor/threshold-vote/randsrc"
	"github.com/ursaminor/threshold-vote/threshold"
)

func ceremonyCommand() *cli.Command {
	return &cli.Command{
		Name:  "ceremony",
		Usage: "run a full n-of-k distributed key-generation ceremony and write its artifacts",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "params", Required: true, Usage: "input .pvcryptosys path"},
			&cli.StringFlag{Name: "roster", Required: true, Usage: "YAML trustee roster path"},
			&cli.StringFlag{Name: "out-dir", Required: true, Usage: "directory to write ceremony artifacts into"},
			&cli.BoolFlag{Name: "yes", Usage: "skip the interactive confirmation prompt"},
		},
		Action: func(c *cli.Context) error {
			cs, err := loadCryptosystem(c.String("params"))
			if err != nil {
				return err
			}

			roster, err := config.LoadFile(c.String("roster"))
			if err != nil {
				return err
			}

			if !c.Bool("yes") {
				proceed := false
				prompt := &survey.Confirm{
					Message: fmt.Sprintf("Run the ceremony for n=%d, k=%d and write artifacts to %s?", roster.N, roster.K, c.String("out-dir")),
					Default: true,
				}
				if err := survey.AskOne(prompt, &proceed); err != nil {
					return err
				}
				if !proceed {
					log.Info().Msg("ceremony aborted by operator")
					return nil
				}
			}

			outDir := c.String("out-dir")
			if err := os.MkdirAll(outDir, 0o700); err != nil {
				return err
			}

			keyPairs, err := runCeremony(cs, roster.N, roster.K, outDir)
			if err != nil {
				return err
			}

			tpkFP := keyPairs[0].Public.Fingerprint()
			log.Info().Hex("threshold_public_key_fingerprint", tpkFP[:]).Msg("ceremony complete")
			return nil
		},
	}
}

// runCeremony drives the DKG protocol for every trustee in one process
// (a single operator simulating all n participants), generating each
// trustee's long-term key pair, running the Pedersen VSS exchange, and
// writing every artifact into outDir.
func runCeremony(cs *cryptosystem.Cryptosystem, n, k int, outDir string) ([]*threshold.ThresholdKeyPair, error) {
	trusteeKeys := make([]*elgamal.KeyPair, n)
	for i := 0; i < n; i++ {
		kp, err := elgamal.NewKeyPair(cs, randsrc.Default())
		if err != nil {
			return nil, err
		}
		trusteeKeys[i] = kp

		if err := writeMarshaled(filepath.Join(outDir, fmt.Sprintf("trustee-%d.priv", i)), kp.Private); err != nil {
			return nil, err
		}
	}

	setups := make([]*threshold.SetUp, n)
	for i := 0; i < n; i++ {
		su, err := threshold.NewSetUp(cs, n, k)
		if err != nil {
			return nil, err
		}
		setups[i] = su
	}

	for i := 0; i < n; i++ {
		for _, su := range setups {
			if err := su.AddTrusteePublicKey(i, trusteeKeys[i].Public); err != nil {
				return nil, err
			}
		}
	}

	commitments := make([]*threshold.Commitment, n)
	for i := 0; i < n; i++ {
		cm, err := setups[i].GenerateCommitment(i, randsrc.Default())
		if err != nil {
			return nil, err
		}
		commitments[i] = cm
	}

	for i := 0; i < n; i++ {
		for _, su := range setups {
			if err := su.AddTrusteeCommitment(i, commitments[i]); err != nil {
				return nil, err
			}
		}
	}

	keyPairs := make([]*threshold.ThresholdKeyPair, n)
	for i := 0; i < n; i++ {
		kp, err := setups[i].GenerateKeyPair(i, trusteeKeys[i].Private)
		if err != nil {
			return nil, err
		}
		keyPairs[i] = kp

		f, err := os.Create(filepath.Join(outDir, fmt.Sprintf("trustee-%d.share", i)))
		if err != nil {
			return nil, err
		}
		err = kp.SaveShare(f)
		f.Close()
		if err != nil {
			return nil, err
		}
	}

	if err := writeMarshaled(filepath.Join(outDir, "threshold.pub"), keyPairs[0].Public); err != nil {
		return nil, err
	}

	log.Info().Int("n", n).Int("k", k).Msg("ceremony ran to completion")
	return keyPairs, nil
}
