package lzastage

import (
	"sort"

	"github.com/cockroachdb/errors"
	tfdag "github.com/sourcegraph/tf-dag/dag"
)

// Node is one plan action placed in the execution graph.
type Node struct {
	PipelineStage string
	Action        Action
}

func (n *Node) Name() string {
	return n.PipelineStage + "/" + n.Action.Name
}

// Graph is the acyclic execution graph over a pipeline plan. Edges run from
// dependent actions to their prerequisites, so a walk visits prerequisites
// first.
type Graph struct {
	graph tfdag.AcyclicGraph
	nodes []*Node
	deps  map[*Node][]*Node
}

// BuildGraph validates the plan and lifts it into an execution graph.
// Pipeline stage boundaries and intra-stage run orders become edges.
func BuildGraph(plan []PipelineStage) (*Graph, error) {
	g := &Graph{deps: make(map[*Node][]*Node)}

	var prevRank []*Node
	for _, stage := range plan {
		ranks, err := stageRanks(stage)
		if err != nil {
			return nil, err
		}
		for _, rank := range ranks {
			for _, node := range rank {
				g.nodes = append(g.nodes, node)
				g.graph.Add(node)
				for _, dep := range prevRank {
					g.graph.Connect(tfdag.BasicEdge(node, dep))
					g.deps[node] = append(g.deps[node], dep)
				}
			}
			prevRank = rank
		}
	}

	g.graph.TransitiveReduction()

	if cycles := g.graph.Cycles(); len(cycles) > 0 {
		return nil, errors.Newf("dependency cycle detected in pipeline plan")
	}

	return g, nil
}

// stageRanks groups a stage's actions by run order and checks the orders
// are contiguous from 1.
func stageRanks(stage PipelineStage) ([][]*Node, error) {
	if len(stage.Actions) == 0 {
		return nil, errors.Newf("pipeline stage %q has no actions", stage.Name)
	}

	byOrder := make(map[int][]*Node)
	seen := make(map[string]struct{}, len(stage.Actions))
	for _, action := range stage.Actions {
		if action.RunOrder < 1 {
			return nil, errors.Newf("action %s/%s has run order %d, must be >= 1",
				stage.Name, action.Name, action.RunOrder)
		}
		if action.Command == CommandDeploy && !action.Stage.Deployable() {
			return nil, errors.Newf("action %s/%s deploys non-deployable stage %q",
				stage.Name, action.Name, action.Stage)
		}
		if _, ok := seen[action.Name]; ok {
			return nil, errors.Newf("duplicate action name %q in pipeline stage %q",
				action.Name, stage.Name)
		}
		seen[action.Name] = struct{}{}
		byOrder[action.RunOrder] = append(byOrder[action.RunOrder], &Node{
			PipelineStage: stage.Name,
			Action:        action,
		})
	}

	orders := make([]int, 0, len(byOrder))
	for order := range byOrder {
		orders = append(orders, order)
	}
	sort.Ints(orders)
	for idx, order := range orders {
		if order != idx+1 {
			return nil, errors.Newf("pipeline stage %q run orders are not contiguous from 1", stage.Name)
		}
	}

	ranks := make([][]*Node, 0, len(orders))
	for _, order := range orders {
		ranks = append(ranks, byOrder[order])
	}
	return ranks, nil
}

// Waves returns the maximal-parallelism schedule: every node in wave n has
// all of its prerequisites in earlier waves.
func (g *Graph) Waves() [][]*Node {
	depth := make(map[*Node]int, len(g.nodes))
	var nodeDepth func(n *Node) int
	nodeDepth = func(n *Node) int {
		if d, ok := depth[n]; ok {
			return d
		}
		d := 0
		for _, dep := range g.deps[n] {
			if dd := nodeDepth(dep) + 1; dd > d {
				d = dd
			}
		}
		depth[n] = d
		return d
	}

	maxDepth := 0
	for _, n := range g.nodes {
		if d := nodeDepth(n); d > maxDepth {
			maxDepth = d
		}
	}

	waves := make([][]*Node, maxDepth+1)
	for _, n := range g.nodes {
		waves[depth[n]] = append(waves[depth[n]], n)
	}
	return waves
}

// Walk visits every node with prerequisites completed first, parallelizing
// independent nodes.
func (g *Graph) Walk(fn func(*Node) error) error {
	return g.graph.Walk(func(vertex tfdag.Vertex) error {
		node, ok := vertex.(*Node)
		if !ok {
			return errors.Newf("unexpected vertex type: %T", vertex)
		}
		return fn(node)
	})
}
