package core

// CitationsFromPassages derives the citation list for an answer.
// Passages are deduplicated by SourceId, keeping the highest-scoring
// passage per source; citation order follows the first appearance of
// each source in the input. The result is never longer than the input.
func CitationsFromPassages(passages []RetrievedPassage) []Citation {
	if len(passages) == 0 {
		return nil
	}

	citations := make([]Citation, 0, len(passages))
	bySource := make(map[string]int, len(passages))

	for _, p := range passages {
		idx, seen := bySource[p.SourceId]
		if !seen {
			bySource[p.SourceId] = len(citations)
			citations = append(citations, Citation{
				SourceId:   p.SourceId,
				SourceName: p.SourceName,
				SectionRef: p.SectionRef,
				Score:      p.Score,
			})
			continue
		}
		if p.Score > citations[idx].Score {
			citations[idx] = Citation{
				SourceId:   p.SourceId,
				SourceName: p.SourceName,
				SectionRef: p.SectionRef,
				Score:      p.Score,
			}
		}
	}

	return citations
}
