package mixnet

import (
	"io"
	"math/big"

	"golang.org/x/sync/errgroup"

	"github.com/ursaminor/threshold-vote/elgamal"
	"github.com/ursaminor/threshold-vote/fingerprint"
	"github.com/ursaminor/threshold-vote/voteerr"
)

// ChallengeBits is the number of Sako-Kilian cut-and-choose rounds, fixed
// to give soundness error 2^-128 per round-trip.
const ChallengeBits = 128

// branch is one challenge bit's revealed response: either the link from
// the input collection to the intermediate collection M (IsRerand true,
// "branch 0"), or the link from M to the output collection (IsRerand
// false, "branch 1"). Exactly one branch is ever populated per challenge
// bit, mirroring the teacher's tagged-variant Proof/ShuffleProof pattern.
type branch struct {
	IsRerand bool
	Perm     []int
	Rand     [][]*big.Int
}

// ShufflingProof is non-interactive evidence that an output collection is
// a permutation and re-encryption of an input collection under a fixed
// threshold public key, without revealing the permutation.
type ShufflingProof struct {
	InputFP  fingerprint.Digest
	OutputFP fingerprint.Digest
	YFP      fingerprint.Digest
	M        []*Collection
	branches []branch
}

func yFingerprint(y *big.Int) fingerprint.Digest {
	return fingerprint.NewBuilder().WriteInt(y).Sum()
}

// deriveChallengeBits hashes the full proof statement and returns its
// first t bits, most-significant first, as 0/1 ints.
func deriveChallengeBits(inputFP, outputFP, yfp fingerprint.Digest, mfps []fingerprint.Digest, t int) []int {
	b := fingerprint.NewBuilder()
	b.WriteDigest(inputFP)
	b.WriteDigest(outputFP)
	b.WriteDigest(yfp)
	for _, mfp := range mfps {
		b.WriteDigest(mfp)
	}
	digest := b.Sum()

	bits := make([]int, t)
	for l := 0; l < t; l++ {
		byteIdx := l / 8
		bitIdx := uint(7 - l%8)
		bits[l] = int((digest[byteIdx] >> bitIdx) & 1)
	}
	return bits
}

// commitRound samples an independent random permutation sigma and
// per-item re-randomizers rho for round l, and builds the resulting
// intermediate collection M_l.
func commitRound(a *Collection, rng io.Reader) (m *Collection, sigma []int, rho [][]*big.Int, err error) {
	n := a.Len()
	cs := a.Cryptosystem()

	sigma, err = genPermutation(n, rng)
	if err != nil {
		return nil, nil, nil, err
	}

	rho = make([][]*big.Int, n)
	items := make([]*elgamal.Ciphertext, n)
	for j := 0; j < n; j++ {
		rhoJ, err := sampleRandomizers(cs, a.blockCount, rng)
		if err != nil {
			return nil, nil, nil, err
		}
		rho[j] = rhoJ

		reenc, err := reencryptBlocks(cs, a.At(j), a.Y(), rhoJ)
		if err != nil {
			return nil, nil, nil, err
		}
		items[sigma[j]] = reenc
	}

	m = a.cloneEmpty()
	m.items = items
	return m, sigma, rho, nil
}

// respondRound builds round l's branch response for the given challenge
// bit, given the real permutation pi and re-randomizers r linking a to b.
func respondRound(q *big.Int, pi []int, r [][]*big.Int, sigma []int, rho [][]*big.Int, bit int) branch {
	if bit == 0 {
		return branch{IsRerand: true, Perm: sigma, Rand: rho}
	}

	n := len(sigma)
	blockCount := len(r[0])
	sigmaInv := invertPermutation(sigma)

	tau := make([]int, n)
	rhoPrime := make([][]*big.Int, n)
	for i := 0; i < n; i++ {
		j := sigmaInv[i]
		tau[i] = pi[j]

		rhoPrime[i] = make([]*big.Int, blockCount)
		for b := 0; b < blockCount; b++ {
			diff := new(big.Int).Sub(r[j][b], rho[j][b])
			diff.Mod(diff, q)
			rhoPrime[i][b] = diff
		}
	}
	return branch{IsRerand: false, Perm: tau, Rand: rhoPrime}
}

// proveShuffle builds a ShufflingProof sequentially across all t rounds.
func proveShuffle(a, b *Collection, pi []int, r [][]*big.Int, rng io.Reader) (*ShufflingProof, error) {
	ms := make([]*Collection, ChallengeBits)
	sigmas := make([][]int, ChallengeBits)
	rhos := make([][][]*big.Int, ChallengeBits)

	for l := 0; l < ChallengeBits; l++ {
		m, sigma, rho, err := commitRound(a, rng)
		if err != nil {
			return nil, err
		}
		ms[l], sigmas[l], rhos[l] = m, sigma, rho
	}

	return finishProof(a, b, pi, r, ms, sigmas, rhos)
}

// proveShuffleWithWorkers is proveShuffle with round commitment fanned out
// across a bounded pool of goroutines, since each round is independent
// until the challenge is derived.
func proveShuffleWithWorkers(a, b *Collection, pi []int, r [][]*big.Int, rng io.Reader, workers int) (*ShufflingProof, error) {
	ms := make([]*Collection, ChallengeBits)
	sigmas := make([][]int, ChallengeBits)
	rhos := make([][][]*big.Int, ChallengeBits)

	g := new(errgroup.Group)
	g.SetLimit(workers)
	for l := 0; l < ChallengeBits; l++ {
		l := l
		g.Go(func() error {
			m, sigma, rho, err := commitRound(a, rng)
			if err != nil {
				return err
			}
			ms[l], sigmas[l], rhos[l] = m, sigma, rho
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return finishProof(a, b, pi, r, ms, sigmas, rhos)
}

func finishProof(a, b *Collection, pi []int, r [][]*big.Int, ms []*Collection, sigmas [][]int, rhos [][][]*big.Int) (*ShufflingProof, error) {
	inputFP := a.Fingerprint()
	outputFP := b.Fingerprint()
	yfp := yFingerprint(a.Y())

	mfps := make([]fingerprint.Digest, ChallengeBits)
	for l, m := range ms {
		mfps[l] = m.Fingerprint()
	}
	bits := deriveChallengeBits(inputFP, outputFP, yfp, mfps, ChallengeBits)

	q := a.Cryptosystem().Group().Q()
	branches := make([]branch, ChallengeBits)
	for l := 0; l < ChallengeBits; l++ {
		branches[l] = respondRound(q, pi, r, sigmas[l], rhos[l], bits[l])
	}

	return &ShufflingProof{
		InputFP:  inputFP,
		OutputFP: outputFP,
		YFP:      yfp,
		M:        ms,
		branches: branches,
	}, nil
}

// checkRound verifies round l's branch response against the committed
// intermediate collection M_l and the input/output collections.
func checkRound(a, b *Collection, m *Collection, br branch, bit int) error {
	n := a.Len()
	if len(br.Perm) != n || len(br.Rand) != n {
		return voteerr.ErrInvalidShuffleProof
	}

	cs := a.Cryptosystem()

	if bit == 0 {
		if !br.IsRerand {
			return voteerr.ErrInvalidShuffleProof
		}
		recomputed := a.cloneEmpty()
		items := make([]*elgamal.Ciphertext, n)
		for j := 0; j < n; j++ {
			if br.Perm[j] < 0 || br.Perm[j] >= n {
				return voteerr.ErrInvalidShuffleProof
			}
			reenc, err := reencryptBlocks(cs, a.At(j), a.Y(), br.Rand[j])
			if err != nil {
				return voteerr.ErrInvalidShuffleProof
			}
			items[br.Perm[j]] = reenc
		}
		recomputed.items = items
		if recomputed.Fingerprint() != m.Fingerprint() {
			return voteerr.ErrInvalidShuffleProof
		}
		return nil
	}

	if br.IsRerand {
		return voteerr.ErrInvalidShuffleProof
	}
	recomputed := a.cloneEmpty()
	items := make([]*elgamal.Ciphertext, n)
	for i := 0; i < n; i++ {
		if br.Perm[i] < 0 || br.Perm[i] >= n {
			return voteerr.ErrInvalidShuffleProof
		}
		reenc, err := reencryptBlocks(cs, m.At(i), a.Y(), br.Rand[i])
		if err != nil {
			return voteerr.ErrInvalidShuffleProof
		}
		items[br.Perm[i]] = reenc
	}
	recomputed.items = items
	if recomputed.Fingerprint() != b.Fingerprint() {
		return voteerr.ErrInvalidShuffleProof
	}
	return nil
}

// VerifyShuffle checks proof against the claimed input and output
// collections.
func VerifyShuffle(a, b *Collection, proof *ShufflingProof) error {
	if len(proof.M) != ChallengeBits || len(proof.branches) != ChallengeBits {
		return voteerr.ErrInvalidShuffleProof
	}
	if a.Fingerprint() != proof.InputFP || b.Fingerprint() != proof.OutputFP {
		return voteerr.ErrInvalidShuffleProof
	}
	if yFingerprint(a.Y()) != proof.YFP {
		return voteerr.ErrInvalidShuffleProof
	}

	mfps := make([]fingerprint.Digest, ChallengeBits)
	for l, m := range proof.M {
		mfps[l] = m.Fingerprint()
	}
	bits := deriveChallengeBits(proof.InputFP, proof.OutputFP, proof.YFP, mfps, ChallengeBits)

	for l := 0; l < ChallengeBits; l++ {
		if err := checkRound(a, b, proof.M[l], proof.branches[l], bits[l]); err != nil {
			return err
		}
	}
	return nil
}

// VerifyShuffleWithWorkers is VerifyShuffle with per-round checks fanned
// out across a bounded pool of goroutines.
func VerifyShuffleWithWorkers(a, b *Collection, proof *ShufflingProof, workers int) error {
	if len(proof.M) != ChallengeBits || len(proof.branches) != ChallengeBits {
		return voteerr.ErrInvalidShuffleProof
	}
	if a.Fingerprint() != proof.InputFP || b.Fingerprint() != proof.OutputFP {
		return voteerr.ErrInvalidShuffleProof
	}
	if yFingerprint(a.Y()) != proof.YFP {
		return voteerr.ErrInvalidShuffleProof
	}

	mfps := make([]fingerprint.Digest, ChallengeBits)
	for l, m := range proof.M {
		mfps[l] = m.Fingerprint()
	}
	bits := deriveChallengeBits(proof.InputFP, proof.OutputFP, proof.YFP, mfps, ChallengeBits)

	g := new(errgroup.Group)
	g.SetLimit(workers)
	for l := 0; l < ChallengeBits; l++ {
		l := l
		g.Go(func() error {
			return checkRound(a, b, proof.M[l], proof.branches[l], bits[l])
		})
	}
	return g.Wait()
}
