package collection

import (
	"github.com/corona10/goimagehash"
	"github.com/disintegration/imaging"
)

// FindSimilar populates the similarity indices using a sliding window of
// size window over the time-ordered items: two images inside the same window
// whose perceptual hash distance is at most maxDistance are marked similar,
// symmetrically. Non-image items and images that fail to hash are skipped.
//
// Hashes are cached on the items, so a re-run after synchronize only decodes
// files that changed.
func (c *Collection) FindSimilar(window, maxDistance int) {
	if window < 2 {
		return
	}

	for i := range c.Items {
		c.Items[i].Similar = nil
		if c.Items[i].IsImage() && c.Items[i].Hash == 0 {
			c.Items[i].Hash = hashFile(c.Items[i].AbsPath(c.Root))
		}
	}

	for i := range c.Items {
		if !c.Items[i].IsImage() || c.Items[i].Hash == 0 {
			continue
		}
		for j := i + 1; j < len(c.Items) && j < i+window; j++ {
			if !c.Items[j].IsImage() || c.Items[j].Hash == 0 {
				continue
			}
			if hashDistance(c.Items[i].Hash, c.Items[j].Hash) <= maxDistance {
				c.markSimilar(i, j)
			}
		}
	}
}

// markSimilar links two items both ways without duplicating entries.
func (c *Collection) markSimilar(i, j int) {
	c.Items[i].Similar = appendIndex(c.Items[i].Similar, j)
	c.Items[j].Similar = appendIndex(c.Items[j].Similar, i)
}

func appendIndex(indices []int, index int) []int {
	for _, existing := range indices {
		if existing == index {
			return indices
		}
	}
	return append(indices, index)
}

// hashFile computes the perceptual hash for an image file. Zero means the
// file could not be decoded; callers treat that as "never similar".
func hashFile(path string) uint64 {
	img, err := imaging.Open(path)
	if err != nil {
		return 0
	}
	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return 0
	}
	return hash.GetHash()
}

func hashDistance(a, b uint64) int {
	left := goimagehash.NewImageHash(a, goimagehash.PHash)
	right := goimagehash.NewImageHash(b, goimagehash.PHash)
	distance, err := left.Distance(right)
	if err != nil {
		return 65
	}
	return distance
}
