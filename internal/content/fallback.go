package content

import "strings"

// Static passages used when no remote generator is configured or the
// remote call fails. Each is pre-vetted prose of 250 to 350 words, so
// every tier whose bounds contain that range can serve any of them.
// Topics not present here fall back to the first entry.
var fallbackPassages = map[string]string{
	"Philosophy": "The nature of consciousness remains one of philosophy's most intractable puzzles. While neuroscience has made considerable advances in mapping brain correlates of subjective experience, the explanatory gap between physical processes and phenomenal awareness persists. This gap highlights what philosophers term the hard problem of consciousness, the question of why and how physical processes give rise to subjective experience rather than occurring in the dark. The more straightforward easy problems of explaining cognitive functions have yielded to scientific investigation, yet consciousness itself seems to resist such reductionist approaches. Some contemporary philosophers argue that this resistance reflects a fundamental limitation in our current methodological frameworks rather than metaphysical mystery. They contend that subjective experience emerges from information integration across neural systems in ways our present vocabulary cannot adequately capture. Others maintain that consciousness genuinely transcends physicalist explanation, pointing to the seemingly unbridgeable qualitative nature of experience. The dispute between these positions hinges partly on empirical claims about neural organization but also on deeper commitments about what kinds of explanation are ultimately satisfying. What remains undisputed is that consciousness presents unique explanatory challenges. The first-person perspective from which consciousness is known cannot be exhausted by third-person scientific description. This asymmetry suggests that future progress requires not merely increased neurological sophistication but perhaps reconceptualization of what we mean by explanation itself. The puzzle endures not because neuroscience has failed but because consciousness occupies an unusual epistemic position, being simultaneously the most intimately known aspect of our experience and the least amenable to objective verification. Some philosophers now suggest that the dichotomy between subjective and objective knowledge itself requires rethinking. The history of consciousness studies demonstrates repeatedly that progress depends less on empirical discovery than on conceptual innovation. Different theoretical frameworks generate different puzzles and apparently different solutions. Recent work in neurophenomenology attempts to bridge first-person and third-person perspectives through systematic analysis of conscious experience itself. Yet fundamental questions persist about whether such bridging is genuinely possible or merely postpones deeper conceptual tensions.",

	"Political theory": "Liberal democracy rests upon an assumption increasingly questioned by contemporary political theorists: that rational deliberation among equal citizens can produce legitimate collective decisions. This assumption presumes a degree of popular understanding, engagement, and mutual respect that empirical reality seems to contradict. Mass democratic electorates routinely demonstrate preference aggregation mechanisms that bear little resemblance to ideals of reasoned discourse. Yet the alternative, restricting political participation to informed elites, carries its own epistemic and moral costs. Recent scholarship suggests the paradox may be less about democracy's failure than about our misplaced expectations. Democratic procedures do not eliminate conflict or produce perfect justice. Rather, they institutionalize contestation in ways that prevent any single group from monopolizing power indefinitely. This procedural legitimacy, distinct from outcomes-based legitimacy, requires neither universal truth-seeking nor perfect rationality. Instead, it depends on citizens accepting that they may lose current battles while retaining genuine opportunity to win future ones. This acceptance becomes fragile when institutional mechanisms begin systematically favoring particular interests. The crisis of contemporary liberal democracy may thus reflect not the inherent limitations of democratic procedure but the breakdown of conditions sustaining procedural legitimacy. When electoral systems become responsive primarily to wealthy interests, when media fragmentation prevents shared deliberative space, when institutions appear incapable of addressing urgent problems, citizens rationally lose faith in procedural fairness. Reform proposals typically point toward either expanding democratic participation or improving deliberative quality. Yet these solutions often miss deeper structural issues. Material conditions enabling procedural agreement have deteriorated precisely as formal democratic institutions have expanded. The relationship between institutional form and underlying social trust proves more complicated than theories of deliberative democracy suggest. Genuine procedural legitimacy may depend less on improving argumentation than on reconstructing conditions making reasonable disagreement tolerable. This interpretation suggests solutions require not returning to impossible ideals of rational consensus but rebuilding material conditions enabling meaningful participation.",

	"Behavioral economics": "Traditional economic theory assumes human actors pursue wealth maximization through rational calculation of costs and benefits. Behavioral economics has extensively documented systematic deviations from this model. Yet the implications of these empirical findings remain contested. Critics argue that documenting irrational behavior patterns simply describes noise around a rational core, telling us little about actual decision-making in high-stakes environments where learning occurs. They note that real markets provide feedback mechanisms allowing sophisticated actors to correct systematic biases. Behavioral economists counter that documented deviations are not random but exhibit predictable structure, manifesting regularly across populations and persisting even among experts. Many biases prove difficult to eliminate through increased information or incentives. This disagreement partly reflects different conceptions of rationality itself. The traditional model defines rationality as internal consistency of preferences. Behavioral economics employs a richer concept encompassing temporal discounting, reference dependence, and distribution concerns that traditional theory treats as mere departures from true preferences. Yet this proliferation of rationality concepts threatens to render the term vacuous. If rationality encompasses actual human behavior however divergent, it loses explanatory force. Recent work attempts to navigate between extremes by identifying principles governing boundedly rational agents operating under cognitive constraints. This approach acknowledges systematic bias without abandoning explanatory rigor. The project requires resisting both the temptation to treat all deviations as equally significant and the dismissal of systematic patterns as mere noise. Understanding which biases prove susceptible to correction versus reflecting deeper cognitive constraints remains essential. The debate increasingly concerns not whether systematic deviations from rational choice occur, but what such deviations reveal about human nature and economic organization.",

	"Cognitive science": "Memory does not function as a recording device faithfully preserving past experience. Instead, remembering involves active reconstruction guided by current knowledge, expectations, and emotional states. This constructive character has profound implications for personal identity and historical knowledge. We imagine ourselves as continuing the same consciousness that experienced events we now recall. Yet the memorial process constitutes a different, constructed entity bearing only partial continuity with original experience. The constructive nature manifests in well-documented phenomena: false memories generated through suggestive questioning, childhood amnesia erasing early years despite presumed dense experience, and enhanced memory for emotionally charged events confirming existing beliefs. These phenomena suggest memory serves coherent narrative integration rather than accurate representation. The brain prioritizes maintaining unified self-narrative over faithful recording, selectively encoding and reconstructing experiences reinforcing identity continuity. This adaptive process proved evolutionarily valuable. Action depends on quickly assembled world models, and perfect accuracy matters less than useful prediction. Yet this mechanism generates systematic distortions. We cannot reliably distinguish accurate from false memories. Both feel equally certain once integrated into personal narratives. This creates asymmetry between individual certainty and actual reliability, with significant implications for eyewitness testimony and personal accountability. Individual memory depends on both neural mechanisms and social context. Family narratives, cultural frameworks, and institutional structures shape what memories form and persist. Collective forgetting occurs not through neural decay but through social practices. Historical consciousness itself undergoes constant reconstruction. Archives, monuments, and curricula determine which versions of the past remain available for individual recollection to draw upon. Recognizing memory as reconstruction therefore carries practical consequences. Institutions that depend on recollection, courts and clinics and schools among them, must build procedures that compensate for distortion rather than assuming testimony mirrors events.",

	"Sociology": "Contemporary urban societies exhibit paradoxical patterns of both increased social connectivity and profound isolation. Digital communication technologies promised transcending geographical constraints enabling meaningful connection across vast distances. Yet evidence suggests these technologies often reinforce existing boundaries while generating novel disconnection forms. Online communities frequently become echo chambers where like-minded individuals reinforce shared assumptions, displacing cross-cutting contact generating cosmopolitanism. Meanwhile, geographic proximity once driving social tie formation has decoupled from actual interaction patterns. Many inhabit dense urban environments while emotionally connecting to distant others. This social space reconfiguration produces distinct population consequences. Highly educated professionals benefit from globally distributed networks providing career mobility and intellectual stimulation. Less educated populations experience place-based community erosion without gaining equivalent distant network access, resulting in net isolation. Public spaces once meeting grounds for diverse groups have progressively privatized and segmented, integrative function displaced by design patterns segregating populations by purchasing power. Consequence extends beyond demographic separation to genuine mutual recognition failure. Different groups inhabit distinct informational and spatial universes, making civic cooperation progressively difficult. Understanding this complex phenomenon requires attention not merely to technology influence but to how technological adoption intersects with existing economic inequalities. Some researchers argue the diagnosis of isolation is overstated, noting that weak ties sustained online still transmit information, opportunity, and occasional support. Others respond that such ties rarely substitute for the durable, obligation-bearing relationships that neighborhoods once supplied, and that measuring connection by contact frequency mistakes volume for depth. Longitudinal studies tracking the same individuals across residential moves suggest both positions capture part of the picture. Network breadth has genuinely expanded for most groups, while the number of confidants people report has declined. The policy implications remain disputed. Investments in shared physical infrastructure show modest but consistent effects on local trust, whereas purely digital interventions show almost none.",

	"History of ideas": "The concept of progress, the belief that human knowledge and material conditions necessarily improve across historical time, came to dominance recently, achieving near-universal nineteenth-century acceptance. Earlier civilizations operated under different temporal frameworks: cyclical views imagining eternal recurrence, decline narratives tracing fall from ancient wisdom, providential models seeing time as divine instrument. The shift toward linear progress narratives coincided with unprecedented technological transformation and European global dominance, making causation difficult to untangle. Did progress beliefs drive technological advancement, or did technological success generate progress narratives justifying it retrospectively? The answer matters because progress frameworks now structure not merely historical interpretation but policy deliberation and individual aspiration. We evaluate institutions by trajectory. Societies must advance or face irrelevance. This progressive teleology carries hidden costs alongside obvious benefits. It generates impatience with untransformed institutions, leading to destructive intervention in systems requiring gradual development. It produces alienation when actual change disappoints progress expectations. Most significantly, progress narratives obscure genuine historical contingency. Our current arrangements represent particular choices rather than inevitable rational potential unfolding. Recovering contingency requires neither rejecting improvement nor halting beneficial change but developing critical distance from progress frameworks, recognizing them as historically particular rather than universal truths. The challenge lies maintaining capacity for practical improvement while acknowledging constructed historical nature. Intellectual historians have therefore turned attention to how progress narratives are produced and sustained: the institutions that reward forward-looking rhetoric, and the selective forgetting that edits stagnation and reversal out of collective memory. Such work does not settle whether progress is real. It clarifies what is being claimed when the word is invoked, and by whom.",
}

// FallbackPassage returns the static passage for a topic. Unknown topics
// get the Philosophy passage so the fallback path always produces text.
func FallbackPassage(topic string) string {
	if p, ok := fallbackPassages[topic]; ok {
		return p
	}
	return fallbackPassages["Philosophy"]
}

// FallbackTopics lists the topics with a dedicated static passage.
func FallbackTopics() []string {
	out := make([]string, 0, len(fallbackPassages))
	for t := range fallbackPassages {
		out = append(out, t)
	}
	return out
}

// questionTemplates builds the fixed question set. The prompts are
// passage-agnostic by construction: they ask about purpose, inference,
// tone and implication, which every passage in rotation supports.
func questionTemplates() []Question {
	return []Question{
		{
			Number: 1,
			Kind:   KindMainIdea,
			Prompt: "Which of the following best captures the primary purpose of the passage?",
			Options: []Option{
				{Label: "A", Text: "To present empirical evidence supporting a widely accepted theory"},
				{Label: "B", Text: "To identify tensions between established assumptions and theoretical challenges"},
				{Label: "C", Text: "To argue for the abandonment of current frameworks in favor of novel approaches"},
				{Label: "D", Text: "To provide a comprehensive history of evolving perspectives on this topic"},
			},
			Correct: "B",
			Rationale: map[string]string{
				CorrectRationaleKey: "Option B captures the passage's central movement: identifying a gap or tension within existing frameworks rather than advocating wholesale replacement or mere historical narration.",
				"A":                 "While the passage references empirical work, its purpose is not to present evidence for an accepted theory but to examine why certain puzzles resist standard approaches.",
				"B":                 "This is the credited response.",
				"C":                 "The passage critiques frameworks but does not argue for their complete abandonment; it suggests reconceptualization or modified methodology.",
				"D":                 "Though the passage traces conceptual history, this historical tracing serves analytical purposes rather than being the primary purpose itself.",
			},
		},
		{
			Number: 2,
			Kind:   KindInference,
			Prompt: "The passage suggests that persistence of the central problem most directly implies which of the following?",
			Options: []Option{
				{Label: "A", Text: "Current scientific methods are fundamentally inadequate for studying this phenomenon"},
				{Label: "B", Text: "Researchers have failed to invest sufficient effort in empirical investigation"},
				{Label: "C", Text: "The conceptual frameworks available for understanding may require expansion or reconceptualization"},
				{Label: "D", Text: "It is impossible to achieve genuine knowledge about the phenomenon in question"},
			},
			Correct: "C",
			Rationale: map[string]string{
				CorrectRationaleKey: "The passage locates the difficulty in methodological frameworks and in what counts as explanation, implying the frameworks need reconceptualization rather than abandonment.",
				"A":                 "The passage does not claim methods are fundamentally inadequate, only that current approaches may be incomplete with respect to this specific puzzle.",
				"B":                 "Effort level is never discussed; the passage concerns explanatory approach rather than research intensity.",
				"C":                 "This is the credited response.",
				"D":                 "The passage avoids nihilistic conclusions; it points toward reconceptualization rather than impossibility.",
			},
		},
		{
			Number: 3,
			Kind:   KindTone,
			Prompt: "The author's attitude toward the theoretical positions discussed can best be described as:",
			Options: []Option{
				{Label: "A", Text: "Dismissive of one position while clearly endorsing another"},
				{Label: "B", Text: "Skeptical of all positions while reserving judgment on ultimate truth"},
				{Label: "C", Text: "Analytically balanced, recognizing merit in competing frameworks while identifying limitations"},
				{Label: "D", Text: "Resigned to the impossibility of resolution within current discussions"},
			},
			Correct: "C",
			Rationale: map[string]string{
				CorrectRationaleKey: "The author presents multiple positions with some sympathy while critiquing limitations in each, a balanced analytical stance.",
				"A":                 "The author does not clearly endorse any single position; each receives qualified treatment.",
				"B":                 "While the author acknowledges contested points, the discussion goes beyond skepticism into constructive suggestion of modified approaches.",
				"C":                 "This is the credited response.",
				"D":                 "The discussion suggests possibility for progress through reconceptualization, not resignation.",
			},
		},
		{
			Number: 4,
			Kind:   KindImplication,
			Prompt: "If the author's analysis is correct, which would most likely be a logical consequence?",
			Options: []Option{
				{Label: "A", Text: "Future breakthroughs will necessarily come from purely empirical investigations"},
				{Label: "B", Text: "Progress requires not only increased sophistication but also reconceptualization of explanatory standards"},
				{Label: "C", Text: "The fundamental problem will eventually yield to standard methodology with sufficient technological advancement"},
				{Label: "D", Text: "Current disagreements are best understood as merely terminological misunderstandings"},
			},
			Correct: "B",
			Rationale: map[string]string{
				CorrectRationaleKey: "The passage explicitly suggests progress requires reconceptualization alongside empirical sophistication.",
				"A":                 "The passage resists limiting solutions to empirical research alone.",
				"B":                 "This is the credited response.",
				"C":                 "This represents the reductionist position the author critiques.",
				"D":                 "The author treats disagreements as substantive, not merely semantic.",
			},
		},
	}
}

// QuestionSet returns n questions drawn from the fixed templates,
// renumbered to stay contiguous.
func QuestionSet(n int) []Question {
	qs := questionTemplates()
	if n > 0 && n < len(qs) {
		qs = qs[:n]
	}
	for i := range qs {
		qs[i].Number = i + 1
	}
	return qs
}

// truncateAtSentence cuts a passage to at most maxWords, preferring a
// sentence boundary inside the kept window.
func truncateAtSentence(passage string, maxWords int) string {
	words := strings.Fields(passage)
	if len(words) <= maxWords {
		return passage
	}
	truncated := strings.Join(words[:maxWords], " ")
	best := -1
	for _, term := range []string{". ", "! ", "? "} {
		if idx := strings.LastIndex(truncated, term); idx > best {
			best = idx
		}
	}
	if best > 0 {
		return truncated[:best+1]
	}
	return truncated
}
