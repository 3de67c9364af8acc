// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prompt holds the instruction templates for every generation
// stage as an immutable lookup table. Each stage maps to an ordered list
// of literal fragments that callers interleave with dynamic content
// (question, survey, candidate descriptions).
// Implements: prd003-generation (R1.1-R1.3).
package prompt

import "fmt"

// Stage names the generation stages with registered instruction fragments.
type Stage string

const (
	// FirstRoundScreening selects inspiration candidates by their potential
	// to combine with the research question into a hypothesis. 4 fragments:
	// [preamble, before-survey, before-candidates, closing].
	FirstRoundScreening Stage = "first_round_inspiration_screening"

	// SimilarityScreening selects candidates purely by semantic similarity
	// to the research question. Same 4-fragment shape as FirstRoundScreening.
	SimilarityScreening Stage = "first_round_inspiration_screening_only_based_on_semantic_similarity"

	// AdditionalRoundScreening refines an earlier selection around a core
	// inspiration. The keep size is interpolated into its fragments.
	AdditionalRoundScreening Stage = "additional_round_inspiration_screening"
)

// Discipline is the research field named in the screening prompts.
const Discipline = "AI for Materials Science"

// DefaultKeepSize matches the "three candidates" wording baked into the
// screening fragments.
const DefaultKeepSize = 3

var table = map[Stage][]string{
	FirstRoundScreening: {
		"You are helping with the scientific hypotheses generation process. We in general split the period of research hypothesis proposal into three steps. Firstly it's about finding a good and specific background research question, and an introduction of the previous methods under the same topic; Secondly its about finding inspirations (mostly from literatures), which combined with the background research question, can lead to an impactful research hypothesis; Finally it's hypothesis generation based on the background research question and found inspirations. Usually a paper can be choosed as an inspiration is because it can potentially help to solve or alleviate one problem of a previous method for this research question so that leveraging the concepts related to the inspiration, a better method can be developed based on the previous methods and this inspiration. Take backpropagation as an example, the research question is how to use data to automatically improve the parameters of a multi-layer logistic regression with data, the inspiration is the chain rule in mathematics, and the research hypothesis is the backpropagation itself. Here the previous method can only inference the multi-layer logistic regression, but can't automatically update its parameters to learn from data. The selected chain rule inspiration can be leveraged to automatically update the parameters in the multi-layer logistic regression, and therefore improve over the previous method to create hypothesis. \nGiven a research question, the background and some of the existing methods for this research question, and several top-tier publications (including their title and abstract), try to identify which publication can potentially serve as an inspiration for the background research question so that combining the research question and the inspiration in some way, a novel, valid, and significant research hypothesis can be formed. Now try to select inspirations based on the background research question. \nThe background research question is: ",
		"\n\nThe introduction of the previous methods is:",
		"\n\nThe potential inspiration candidates are: ",
		"\n\nNow you have seen the background research question, existing methods, and many potential inspiration candidates. Please try to identify which three literature candidates are the most possible to serve as the inspiration to the background research question? Please name the title of the literature candidate, and also try to give your reasons.",
	},
	SimilarityScreening: {
		"You are helping with the scientists to identify the most semantically similar publications. Given a research question, the background and some of the existing methods for this research question, and several top-tier publications (including their title and abstract), try to identify which publication is the most semantically similar to the background research question. Now try to select publications based on background research question. \nThe background research question is: ",
		"\n\nThe introduction of the previous methods is:",
		"\n\nThe potential publication candidates are: ",
		"\n\nNow you have seen the background research question, and many potential publication candidates. Please try to identify which three literature candidates are the most semantically similar to the background research question? Please name the title of the literature candidate, and also try to give your reasons.",
	},
}

// Instruction returns the literal fragments for stage. The
// additional-round stage interpolates DefaultKeepSize; callers with a
// different keep size use AdditionalRoundInstruction directly. Unknown
// stages fail with a "not implemented" error so a mistyped stage name
// surfaces immediately rather than producing an empty prompt.
func Instruction(stage Stage) ([]string, error) {
	if stage == AdditionalRoundScreening {
		return AdditionalRoundInstruction(DefaultKeepSize)
	}
	fragments, ok := table[stage]
	if !ok {
		return nil, fmt.Errorf("instruction prompts for stage %q: not implemented", stage)
	}
	return fragments, nil
}

// AdditionalRoundInstruction returns the fragments for the
// additional-round screening stage with keepSize interpolated. keepSize
// must be positive; values above 6 are accepted but unusual.
func AdditionalRoundInstruction(keepSize int) ([]string, error) {
	if keepSize <= 0 {
		return nil, fmt.Errorf("additional round instruction: keep size must be positive, got %d", keepSize)
	}
	return []string{
		fmt.Sprintf("You are helping with the scientific hypotheses generation process. We in general split the period of research hypothesis proposal into three steps. Firstly it's about finding a good and specific background research question, and an introduction of the previous methods under the same topic; Secondly its about finding inspirations (mostly from literatures), which combined with the background research question, can lead to a impactful research hypothesis; Finally it's hypothesis generation based on the background research question and found inspirations. Take backpropagation as an example, the research question is how to use data to automatically improve the parameters of a multi-layer logistic regression with data, the inspiration is the chain rule in mathematics, and the research hypothesis is the backpropagation itself. \nNow we have identified a good research question, a core inspiration in a literature for this research question, and a preliminary research hypothesis from the core inspiration. This hypothesis is aiming for top %s venue such as <Nature> and <NeurIPS>. You know that to publish a research in Nature or NeurIPS, the hypotheis must be novel, valid, and significant enough. Ususally it means more than one inspirations should be involved in the hypothesis generation process. Therefore we also have found a series of inspiration candidates, which might provide additional useful information to assist the core inspiration for the next step of hypothesis generation. We have also obtained the potential hypotheses from the combination of each inspiration candidate with the research background question, which might be helpful in determining how each inspiration candidate can potentially contribute to the research question, and whether it could be helpful / complementary to the preliminary hypothesis developed based on the core inspiration. Please help us select around %d inspiration candidates to assist further development of the hypothesis developed from the core inspiration. \nThe background research question is: ", Discipline, keepSize),
		"\n\nThe introduction of the previous methods is:",
		"\n\nThe core inspiration is: ",
		"\n\nThe preliminary hypothesis is: ",
		"\n\nThe potential inspiration candidates and their corresponding hypotheses are: ",
		fmt.Sprintf("\n\nNow you have seen the background research question, the core inspiration, the preliminary hypothesis, and the potential inspiration candidates with their corresponding hypotheses. Please try to identify which %d inspiration candidates can potentially serve such a complement role for the core inspiration, and how they can be helpful / complementary to the preliminary hypothesis developed based on the core inspiration. (response format: 'Title: \nReason: \nTitle: \nReason: \nTitle: \nReason: \n')", keepSize),
	}, nil
}

// Candidate renders one corpus paper for inclusion in a screening window
// prompt, delimited so the model can tell candidates apart.
func Candidate(id int, title, abstract string) string {
	return fmt.Sprintf("Next we will introduce inspiration candidate %d. Title: %s; Abstract: %s. The introduction of inspiration candidate %d has come to an end.\n", id, title, abstract, id)
}
