// Package textutil 提供关键词提取与分词工具。
// 内容分计算需要把候选正文压缩为关键词集合，再与用户兴趣求 Jaccard；
// 语义匹配用同样的分词规则构造兴趣查询文本。
package textutil

import (
	"sort"
	"strings"
	"unicode"
)

// stopwords 是英文常用停用词，出现在正文里不具备区分度。
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "but": true, "by": true, "for": true, "from": true, "has": true,
	"have": true, "in": true, "is": true, "it": true, "its": true, "of": true,
	"on": true, "or": true, "our": true, "that": true, "the": true, "this": true,
	"to": true, "was": true, "we": true, "were": true, "which": true,
	"will": true, "with": true, "you": true, "your": true, "not": true,
	"can": true, "also": true, "these": true, "their": true, "using": true,
	"based": true, "paper": true, "results": true, "show": true,
}

// Tokenize 小写分词：按非字母数字切分，丢弃停用词和长度 < 3 的 token。
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 3 || stopwords[f] {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Keywords 提取正文的 TopN 高频关键词（按频次降序，同频按字典序保证稳定）。
func Keywords(text string, max int) []string {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	freq := make(map[string]int, len(tokens))
	for _, t := range tokens {
		freq[t]++
	}

	terms := make([]string, 0, len(freq))
	for t := range freq {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if freq[terms[i]] != freq[terms[j]] {
			return freq[terms[i]] > freq[terms[j]]
		}
		return terms[i] < terms[j]
	})

	if max > 0 && len(terms) > max {
		terms = terms[:max]
	}
	return terms
}

// Jaccard 计算两个词集的 Jaccard 相似度：|交集| / |并集|。
// 任一集合为空时返回 0。比较前统一小写。
func Jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := make(map[string]bool, len(a))
	for _, v := range a {
		setA[strings.ToLower(v)] = true
	}
	setB := make(map[string]bool, len(b))
	for _, v := range b {
		setB[strings.ToLower(v)] = true
	}

	intersection := 0
	for v := range setA {
		if setB[v] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
