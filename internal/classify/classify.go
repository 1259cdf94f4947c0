// Package classify labels candidate items with an event type and extracts
// named entities via keyword matching. Pure and deterministic, no I/O.
package classify

import (
	"regexp"
	"strings"

	"github.com/deusflow/ainews/internal/feed"
)

// Event-type vocabularies. Rule order is a deliberate priority: policy news
// about a product launch is policy, not launch.
var policyTerms = []string{
	"regulation", "regulatory", "ai act", "executive order", "ai safety",
	"ai policy", "ai governance", "white house", "congress", "senate bill",
	"eu commission", "moratorium", "ai ethics", "safety institute",
}

var launchTerms = []string{
	"launches", "launched", "unveils", "unveiled", "releases", "released",
	"announces", "announced", "introduces", "introduced", "rolls out",
	"debuts", "general availability", "now available",
}

var fundingTerms = []string{
	"funding", "raises", "raised", "investment", "valuation", "series a",
	"series b", "series c", "seed round", "venture capital", "acquisition",
	"acquires", "acquired",
}

var researchTerms = []string{
	"research", "paper", "study", "benchmark", "state of the art",
	"breakthrough", "arxiv", "peer-reviewed", "outperforms",
}

var securityTerms = []string{
	"breach", "vulnerability", "exploit", "jailbreak", "data leak",
	"prompt injection", "malware", "deepfake scam", "hacked",
}

var legalTerms = []string{
	"lawsuit", "sued", "sues", "copyright", "settlement", "court ruling",
	"antitrust", "class action", "injunction",
}

var infraTerms = []string{
	"chip", "chips", "gpu", "gpus", "semiconductor", "data center",
	"datacenter", "nvidia h100", "tpu", "compute cluster", "fab", "foundry",
}

var opinionTerms = []string{
	"opinion", "op-ed", "commentary", "editorial", "why i", "hot take",
}

// Entity vocabularies: organizations, products, technology terms.
var orgTerms = []string{
	"openai", "anthropic", "google", "deepmind", "meta", "microsoft",
	"nvidia", "amazon", "apple", "mistral", "hugging face", "stability ai",
	"xai", "cohere", "baidu", "tencent", "alibaba", "intel", "amd", "tsmc",
	"ibm", "salesforce", "oracle", "perplexity", "midjourney",
}

var productTerms = []string{
	"chatgpt", "gpt-4", "gpt-5", "claude", "gemini", "llama", "copilot",
	"dall-e", "sora", "stable diffusion", "grok", "bard", "whisper",
	"deepseek", "qwen",
}

var techTerms = []string{
	"large language model", "llm", "generative ai", "machine learning",
	"deep learning", "neural network", "transformer", "diffusion model",
	"reinforcement learning", "computer vision", "natural language processing",
	"multimodal", "fine-tuning", "inference", "agents", "rag",
	"foundation model", "frontier model",
}

// Large numeric+unit amounts like "$2B", "$2.5 billion", "50M" split funding
// stories into major vs minor.
var bigMoneyPattern = regexp.MustCompile(`\$?\d+(?:\.\d+)?\s?(?:b|bn|billion|m|mn|million)\b`)

var termPatterns = map[string]*regexp.Regexp{}

func init() {
	for _, vocab := range [][]string{
		policyTerms, launchTerms, fundingTerms, researchTerms, securityTerms,
		legalTerms, infraTerms, opinionTerms, orgTerms, productTerms, techTerms,
	} {
		for _, term := range vocab {
			if _, ok := termPatterns[term]; !ok {
				termPatterns[term] = regexp.MustCompile(`\b` + regexp.QuoteMeta(term) + `\b`)
			}
		}
	}
}

// matchesAny reports whether text contains any term from the vocabulary,
// matched with word boundaries so "ai" never matches inside "said".
func matchesAny(text string, terms []string) bool {
	for _, term := range terms {
		if termPatterns[term].MatchString(text) {
			return true
		}
	}
	return false
}

// detectEventType walks the ordered rule list, first match wins.
func detectEventType(text string) feed.EventType {
	switch {
	case matchesAny(text, policyTerms):
		return feed.EventPolicySafety
	case matchesAny(text, launchTerms):
		return feed.EventProductLaunch
	case matchesAny(text, fundingTerms):
		if bigMoneyPattern.MatchString(text) {
			return feed.EventFundingMajor
		}
		return feed.EventFundingMinor
	case matchesAny(text, researchTerms):
		return feed.EventResearchSOTA
	case matchesAny(text, securityTerms):
		return feed.EventSecurityIncident
	case matchesAny(text, legalTerms):
		return feed.EventLawsuit
	case matchesAny(text, infraTerms):
		return feed.EventChipInfra
	case matchesAny(text, opinionTerms):
		return feed.EventOpinion
	default:
		return feed.EventUnknown
	}
}

// extractEntities collects every vocabulary term present in the text,
// lowercased, without duplicates, in vocabulary order.
func extractEntities(text string) []string {
	var entities []string
	seen := map[string]struct{}{}
	for _, vocab := range [][]string{orgTerms, productTerms, techTerms} {
		for _, term := range vocab {
			if _, dup := seen[term]; dup {
				continue
			}
			if termPatterns[term].MatchString(text) {
				seen[term] = struct{}{}
				entities = append(entities, term)
			}
		}
	}
	return entities
}

// Item tags a candidate with its event type and matched entities.
// Authority is filled in by the filter's source table, not here.
func Item(item feed.CandidateItem) feed.ClassifiedItem {
	text := strings.ToLower(item.Title + " " + item.Description)
	return feed.ClassifiedItem{
		CandidateItem: item,
		EventType:     detectEventType(text),
		Entities:      extractEntities(text),
	}
}
