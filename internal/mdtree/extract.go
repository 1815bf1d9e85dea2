// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mdtree

// BlockFilter selects blocks to extract. An error aborts the extraction.
type BlockFilter func(*Block) (bool, error)

// SectionFilter selects the sections extraction descends into.
type SectionFilter func(*Section) (bool, error)

// TreeFilter pairs a block filter with an optional section filter. A nil
// SectionFilter descends into every section.
type TreeFilter struct {
	BlockFilter   BlockFilter
	SectionFilter SectionFilter
}

// Extractor pulls matching blocks out from under root.
type Extractor func(root *Block, filter BlockFilter) ([]*Block, error)

// Strategy is the filter and extractor applied to every section of a tree.
type Strategy struct {
	Filter    TreeFilter
	Extractor Extractor
}

// Extracted is a block taken out of a section tree together with the
// section whose content held it.
type Extracted struct {
	Block   *Block
	Section *Section
}

// ShallowExtractBlocks stable-partitions the direct children of root.
// Non-matching children stay on root in their original order; matching
// children are returned in their original order with their subtrees
// attached. The filter runs over every child before root is modified, so a
// filter error leaves root unchanged.
func ShallowExtractBlocks(root *Block, filter BlockFilter) ([]*Block, error) {
	matched := make([]bool, len(root.Children))
	for i, child := range root.Children {
		ok, err := filter(child)
		if err != nil {
			return nil, err
		}
		matched[i] = ok
	}

	var extracted, rest []*Block
	for i, child := range root.Children {
		if matched[i] {
			extracted = append(extracted, child)
		} else {
			rest = append(rest, child)
		}
	}
	root.Children = rest
	return extracted, nil
}

// DeepExtractBlocks extracts matching children of root, then repeats the
// extraction inside every child that stayed. A matching block leaves with
// its whole subtree; a non-matching block has its children tested on
// their own.
func DeepExtractBlocks(root *Block, filter BlockFilter) ([]*Block, error) {
	extracted, err := ShallowExtractBlocks(root, filter)
	if err != nil {
		return nil, err
	}
	for _, child := range root.Children {
		nested, err := DeepExtractBlocks(child, filter)
		if err != nil {
			return nil, err
		}
		extracted = append(extracted, nested...)
	}
	return extracted, nil
}

// ExtractBlocksRecursively applies the strategy's extractor to the content
// of root and of every descendant section the section filter admits. The
// result is in document order: a section's own blocks come before those of
// its child sections.
func ExtractBlocksRecursively(root *Section, strategy Strategy) ([]*Block, error) {
	var blocks []*Block
	err := walkExtract(root, strategy, func(_ *Section, extracted []*Block) {
		blocks = append(blocks, extracted...)
	})
	if err != nil {
		return nil, err
	}
	return blocks, nil
}

// ExtractWithContext is ExtractBlocksRecursively, also reporting the
// section each block came from.
func ExtractWithContext(root *Section, strategy Strategy) ([]Extracted, error) {
	var out []Extracted
	err := walkExtract(root, strategy, func(section *Section, extracted []*Block) {
		for _, b := range extracted {
			out = append(out, Extracted{Block: b, Section: section})
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func walkExtract(section *Section, strategy Strategy, emit func(*Section, []*Block)) error {
	extracted, err := strategy.Extractor(section.Content, strategy.Filter.BlockFilter)
	if err != nil {
		return err
	}
	emit(section, extracted)

	for _, child := range section.Children {
		if f := strategy.Filter.SectionFilter; f != nil {
			ok, err := f(child)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
		}
		if err := walkExtract(child, strategy, emit); err != nil {
			return err
		}
	}
	return nil
}
