// Package jobgraph plans the jobs of a pairwise comparison batch as a
// dependency graph handed to an external scheduler.  The graph is two
// levels deep by construction: one database-build job per genome (always a
// root), and one alignment job per ordered genome pair, depending on the
// subject genome's database-build job.  Jobs are immutable values; the
// graph carries no execution state.
package jobgraph

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/genomealign/anib/ani"
	"github.com/genomealign/anib/blast"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
)

// Handle identifies a job within its graph.  Dependencies are handles
// rather than embedded references, which keeps the graph trivially
// serializable and acyclic by construction: a job may only depend on jobs
// appended before it.
type Handle int

// Kind distinguishes the two job levels.
type Kind uint8

const (
	// DBBuild indexes one genome into a searchable database.  Always a root.
	DBBuild Kind = iota
	// Alignment aligns one genome's fragments against another genome's
	// database.  Always a leaf with exactly one dependency.
	Alignment
)

func (k Kind) String() string {
	switch k {
	case DBBuild:
		return "db-build"
	case Alignment:
		return "alignment"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Job is one schedulable unit: a fully formed shell command, the output
// file it produces, and the handles of the jobs that must complete first.
type Job struct {
	Kind    Kind
	Command string
	Output  string
	Deps    []Handle
}

// Graph is the complete job set for a batch, in arena form.  Jobs are
// appended during Build and never mutated.
type Graph struct {
	Jobs []Job
}

// Build plans the full batch: one deduplicated database-build job per
// genome, then one alignment job per ordered pair (A,B), A≠B, using A's
// fragmented file as the query.  fragFiles must parallel genomes, as
// returned by ani.FragmentFiles.
//
// Graph invariants (roots without dependencies, single-dependency leaves)
// are unreachable from valid input; violations panic rather than return.
func Build(genomes []ani.Genome, fragFiles []string, b *blast.Builder) *Graph {
	if len(fragFiles) != len(genomes) {
		log.Panicf("jobgraph: %d genomes but %d fragment files", len(genomes), len(fragFiles))
	}
	g := &Graph{}
	dbJobs := make(map[string]Handle)
	for _, genome := range genomes {
		cmd, dbPath := b.DBBuildCmd(genome.Path)
		if _, ok := dbJobs[dbPath]; ok {
			continue
		}
		g.Jobs = append(g.Jobs, Job{Kind: DBBuild, Command: cmd, Output: dbPath})
		dbJobs[dbPath] = Handle(len(g.Jobs) - 1)
	}
	for i := range genomes {
		for j, subject := range genomes {
			if i == j {
				continue
			}
			cmd, outPath := b.AlignmentCmd(fragFiles[i], subject.Path)
			dep, ok := dbJobs[b.DBPath(subject.Path)]
			if !ok {
				log.Panicf("jobgraph: no database job for %s", subject.Path)
			}
			g.Jobs = append(g.Jobs, Job{
				Kind:    Alignment,
				Command: cmd,
				Output:  outPath,
				Deps:    []Handle{dep},
			})
		}
	}
	if err := g.Validate(); err != nil {
		log.Panicf("jobgraph: %v", err)
	}
	return g
}

// Validate re-checks the structural invariants.  Build panics on violation;
// Validate exists so tests and consumers can check graphs independently.
func (g *Graph) Validate() error {
	for i, job := range g.Jobs {
		switch job.Kind {
		case DBBuild:
			if len(job.Deps) != 0 {
				return fmt.Errorf("db-build job %d has %d dependencies, want 0", i, len(job.Deps))
			}
		case Alignment:
			if len(job.Deps) != 1 {
				return fmt.Errorf("alignment job %d has %d dependencies, want 1", i, len(job.Deps))
			}
		default:
			return fmt.Errorf("job %d has unknown kind %d", i, int(job.Kind))
		}
		for _, dep := range job.Deps {
			if dep < 0 || int(dep) >= len(g.Jobs) {
				return fmt.Errorf("job %d dependency %d out of range", i, dep)
			}
			if int(dep) >= i {
				return fmt.Errorf("job %d depends on later job %d", i, dep)
			}
			if g.Jobs[dep].Kind != DBBuild {
				return fmt.Errorf("job %d depends on %s job %d, want db-build", i, g.Jobs[dep].Kind, dep)
			}
		}
	}
	return nil
}

// Roots returns the handles of all jobs without dependencies, in graph
// order.  A scheduler must complete these before any job depending on them.
func (g *Graph) Roots() []Handle {
	var roots []Handle
	for i, job := range g.Jobs {
		if len(job.Deps) == 0 {
			roots = append(roots, Handle(i))
		}
	}
	return roots
}

// WriteListing writes the graph as a TSV table (id, kind, deps, output,
// command) consumed by external schedulers.  Dependencies are
// comma-separated job IDs.
func (g *Graph) WriteListing(w io.Writer) error {
	out := tsv.NewWriter(w)
	for _, col := range []string{"id", "kind", "deps", "output", "command"} {
		out.WriteString(col)
	}
	if err := out.EndLine(); err != nil {
		return err
	}
	for i, job := range g.Jobs {
		out.WriteString(strconv.Itoa(i))
		out.WriteString(job.Kind.String())
		deps := make([]string, len(job.Deps))
		for d, dep := range job.Deps {
			deps[d] = strconv.Itoa(int(dep))
		}
		out.WriteString(strings.Join(deps, ","))
		out.WriteString(job.Output)
		out.WriteString(job.Command)
		if err := out.EndLine(); err != nil {
			return err
		}
	}
	return out.Flush()
}
