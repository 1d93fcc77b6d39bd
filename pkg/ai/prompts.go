package ai

// ExtractPrompt is the system prompt for graph extraction from knowledge
// chunks. It takes three formatting arguments: the entity type list
// (twice) and nothing else.
const ExtractPrompt = `You are building a knowledge graph for a customer-service
knowledge base. Given a passage of text, identify the entities it mentions
and the relations between them.

Step 1 - Entities. Identify all entities in the passage. For each entity:
- label: the entity name, all letters capitalized
- type: one of the following types: %s
- description: a short description of the entity using only information
  from the passage

Step 2 - Relations. Identify all pairs of entities from step 1 that are
clearly related to each other in the passage. For each relation:
- src: the label of the source entity, exactly as written in step 1
- dst: the label of the target entity, exactly as written in step 1
- relation: a short verb phrase naming the relation

Rules:
- Use only the provided entity types (%s); skip entities that fit none.
- Never invent entities or relations that the passage does not support.
- Both src and dst of every relation must appear among the step 1 labels.`

// DefaultEntityTypes is used when the caller does not restrict types.
var DefaultEntityTypes = []string{
	"PERSON", "COMPANY", "PRODUCT", "PROCESS", "POLICY", "LOCATION", "CONCEPT", "EVENT",
}
