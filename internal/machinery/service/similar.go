package service

import (
	"sort"
	"strings"

	"machinery-service/internal/machinery/model"
)

// suggest: для каждого «лишнего» имени ищем самое похожее «недостающее»:
// часто это одно и то же оборудование, записанное по-разному.
func suggest(different, missing model.EquipmentSet, threshold float64) []model.Suggestion {
	if different.Len() == 0 || missing.Len() == 0 {
		return nil
	}
	idx := buildTrigramIndex(missing)

	var out []model.Suggestion
	for _, d := range different.Sorted() {
		bestName := ""
		best := -1.0
		for _, cand := range idx.candidates(d) {
			if s := bestSimilarity(d, cand); s > best {
				best, bestName = s, cand
			}
		}
		if bestName != "" && best >= threshold {
			out = append(out, model.Suggestion{
				Different: TitleCase(d),
				Missing:   TitleCase(bestName),
				Score:     best,
			})
		}
	}
	return out
}

// индекс триграмм по недостающим именам
type trigramIndex struct {
	inv map[string]map[string]struct{} // trigram -> set(name)
}

func buildTrigramIndex(names model.EquipmentSet) *trigramIndex {
	idx := &trigramIndex{inv: make(map[string]map[string]struct{})}
	for n := range names {
		for g := range trigramSet(n) {
			bucket, ok := idx.inv[g]
			if !ok {
				bucket = make(map[string]struct{})
				idx.inv[g] = bucket
			}
			bucket[n] = struct{}{}
		}
	}
	return idx
}

func (idx *trigramIndex) candidates(name string) []string {
	seen := make(map[string]struct{})
	for g := range trigramSet(name) {
		for n := range idx.inv[g] {
			seen[n] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out) // для детерминированного порядка
	return out
}

func trigramSet(s string) map[string]struct{} {
	m := make(map[string]struct{})
	if s == "" {
		return m
	}
	r := []rune(" " + s + " ")
	if len(r) < 3 {
		m[string(r)] = struct{}{}
		return m
	}
	for i := 0; i <= len(r)-3; i++ {
		m[string(r[i:i+3])] = struct{}{}
	}
	return m
}

// similarity: нормированная Damerau-Levenshtein в [0..1]
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	m := len([]rune(a))
	if mb := len([]rune(b)); mb > m {
		m = mb
	}
	return 1 - float64(damerauLevenshtein(a, b))/float64(m)
}

// устойчиво к порядку слов: "pump ballast" == "ballast pump"
func tokenSort(s string) string {
	t := strings.Fields(s)
	sort.Strings(t)
	return strings.Join(t, " ")
}

func bestSimilarity(a, b string) float64 {
	return max(similarity(a, b), similarity(tokenSort(a), tokenSort(b)))
}

func damerauLevenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	al, bl := len(ra), len(rb)

	dp := make([][]int, al+1)
	for i := range dp {
		dp[i] = make([]int, bl+1)
		dp[i][0] = i
	}
	for j := 0; j <= bl; j++ {
		dp[0][j] = j
	}

	for i := 1; i <= al; i++ {
		for j := 1; j <= bl; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			// вставка / удаление / замена
			dp[i][j] = min(dp[i-1][j]+1, dp[i][j-1]+1, dp[i-1][j-1]+cost)
			// транспозиция соседних символов
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				dp[i][j] = min(dp[i][j], dp[i-2][j-2]+1)
			}
		}
	}
	return dp[al][bl]
}
