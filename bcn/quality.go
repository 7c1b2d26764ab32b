package bcn

// Quality gates the candidate search breadth for the multi-mode formats.
// Each tier's candidate list is a strict superset of the tier below, so
// raising the quality can never raise the selected block's error. BC1/3/4/5
// have a single encoding path and ignore the tier.

var (
	bc7Trials  [3][]bc7Trial
	bc6hTrials [3][]bc6hTrial
)

func init() {
	// Fast: the one mode that handles arbitrary RGBA on its own.
	fast := []bc7Trial{{mode: 6}}

	normal := append([]bc7Trial{}, fast...)
	for p := 0; p < 64; p++ {
		normal = append(normal, bc7Trial{mode: 1, partition: uint8(p)})
	}
	for p := 0; p < 64; p++ {
		normal = append(normal, bc7Trial{mode: 3, partition: uint8(p)})
	}
	for r := 0; r < 4; r++ {
		normal = append(normal, bc7Trial{mode: 5, rotation: uint8(r)})
	}

	high := append([]bc7Trial{}, normal...)
	for p := 0; p < 16; p++ {
		high = append(high, bc7Trial{mode: 0, partition: uint8(p)})
	}
	for p := 0; p < 64; p++ {
		high = append(high, bc7Trial{mode: 2, partition: uint8(p)})
	}
	for r := 0; r < 4; r++ {
		for im := 0; im < 2; im++ {
			high = append(high, bc7Trial{mode: 4, rotation: uint8(r), indexMode: uint8(im)})
		}
	}
	for p := 0; p < 64; p++ {
		high = append(high, bc7Trial{mode: 7, partition: uint8(p)})
	}

	bc7Trials[QualityFast] = fast
	bc7Trials[QualityNormal] = normal
	bc7Trials[QualityHigh] = high
}

func init() {
	// Fast: the untransformed single-subset mode, feasible for any input.
	fast := []bc6hTrial{{mode: 0}}

	normal := append([]bc6hTrial{}, fast...)
	for m := 1; m <= 3; m++ {
		normal = append(normal, bc6hTrial{mode: uint8(m)})
	}

	high := append([]bc6hTrial{}, normal...)
	for m := 4; m < len(bc6hModes); m++ {
		for p := 0; p < 32; p++ {
			high = append(high, bc6hTrial{mode: uint8(m), partition: uint8(p)})
		}
	}

	bc6hTrials[QualityFast] = fast
	bc6hTrials[QualityNormal] = normal
	bc6hTrials[QualityHigh] = high
}

func bc7TrialsForQuality(q Quality) []bc7Trial {
	return bc7Trials[q]
}

func bc6hTrialsForQuality(q Quality) []bc6hTrial {
	return bc6hTrials[q]
}
