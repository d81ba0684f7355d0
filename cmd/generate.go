package cmd

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"constella/orrery/internal/db"
	"constella/orrery/internal/logging"
)

var (
	genMembers  int
	genPosts    int
	genComments int
	genSeed     int64
)

var usernameAdjectives = []string{
	"amber", "brisk", "calm", "dusty", "early", "faded", "gentle", "hardy",
	"inner", "jade", "keen", "lucid", "mellow", "noble", "open", "plain",
	"quiet", "rugged", "steady", "tidal", "upbeat", "vivid", "warm", "zesty",
}

var usernameNouns = []string{
	"anchor", "beacon", "cedar", "dawn", "ember", "fjord", "garnet", "harbor",
	"iris", "juniper", "kestrel", "lantern", "meadow", "north", "oak", "pine",
	"quartz", "river", "summit", "thistle", "umber", "vale", "willow", "yarrow",
}

var commentBodies = []string{
	"congrats on the milestone",
	"one day at a time",
	"this really resonated with me",
	"thanks for sharing this",
	"proud of you",
	"keep going, it gets easier",
	"needed to read this today",
	"same here, you are not alone",
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic community into the store",
	Long: `Fills the store with a deterministic synthetic community: members in
loose pods, posts and comments with power-law activity, risk scores for a
subset. The same --seed always produces the same store, so generated data
is usable in reproducible benchmarks.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if genMembers < 1 {
			return fmt.Errorf("--members must be at least 1")
		}

		path := CreateDBPath()
		d, err := db.OpenDB(path)
		if err != nil {
			return err
		}
		defer d.Close()

		rng := rand.New(rand.NewSource(genSeed))
		now := time.Now().Unix()

		logging.Info("generate", "writing %s members to %s", humanize.Comma(int64(genMembers)), path)
		members := make([]db.Member, genMembers)
		for i := range members {
			id := uuid.Must(uuid.NewRandomFromReader(rng)).String()
			m := db.Member{
				ID: id,
				Username: fmt.Sprintf("%s_%s_%d",
					usernameAdjectives[rng.Intn(len(usernameAdjectives))],
					usernameNouns[rng.Intn(len(usernameNouns))],
					rng.Intn(100)),
				ServerComments: int(math.Pow(rng.Float64(), 3) * 500),
			}
			// Most members report a join date; a few never did.
			if rng.Float64() < 0.9 {
				joined := now - int64(rng.Float64()*730*86400)
				m.JoinedAt = &joined
			}
			if rng.Float64() < 0.6 {
				sober := now - int64(rng.Float64()*400*86400)
				m.SoberSince = &sober
			}
			if err := d.InsertMember(m); err != nil {
				return err
			}
			members[i] = m
		}

		// Pods keep most interactions local, so the generated graph
		// splits into several neighborhoods instead of one blob.
		podCount := genMembers/12 + 1
		pods := make([]int, genMembers)
		for i := range pods {
			pods[i] = rng.Intn(podCount)
		}
		byPod := make(map[int][]int, podCount)
		for i, p := range pods {
			byPod[p] = append(byPod[p], i)
		}

		logging.Info("generate", "writing %s posts", humanize.Comma(int64(genPosts)))
		for i := 0; i < genPosts; i++ {
			author := members[powerLawIndex(rng, genMembers)]
			post := db.Post{
				ID:           uuid.Must(uuid.NewRandomFromReader(rng)).String(),
				AuthorID:     author.ID,
				CommentCount: int(math.Pow(rng.Float64(), 2) * 40),
			}
			if err := d.InsertPost(post); err != nil {
				return err
			}
		}

		logging.Info("generate", "writing %s comments", humanize.Comma(int64(genComments)))
		for i := 0; i < genComments; i++ {
			from := powerLawIndex(rng, genMembers)
			var to int
			if pod := byPod[pods[from]]; len(pod) > 1 && rng.Float64() < 0.8 {
				to = pod[rng.Intn(len(pod))]
			} else {
				to = rng.Intn(genMembers)
			}
			comment := db.Comment{
				ID:        uuid.Must(uuid.NewRandomFromReader(rng)).String(),
				FromID:    members[from].ID,
				ToID:      members[to].ID,
				CreatedAt: now - int64(rng.Float64()*90*86400),
				Body:      commentBodies[rng.Intn(len(commentBodies))],
			}
			if err := d.InsertComment(comment); err != nil {
				return err
			}
		}

		risked := 0
		for _, m := range members {
			if rng.Float64() >= 0.4 {
				continue
			}
			risk := rng.Float64()
			level := "low"
			switch {
			case risk >= 0.66:
				level = "high"
			case risk >= 0.33:
				level = "watch"
			}
			if err := d.SetRiskScore(db.RiskScore{MemberID: m.ID, Risk: risk, Level: level}); err != nil {
				return err
			}
			risked++
		}

		fmt.Printf("generated %s members, %s posts, %s comments, %s risk scores (seed %d) into %s\n",
			humanize.Comma(int64(genMembers)), humanize.Comma(int64(genPosts)),
			humanize.Comma(int64(genComments)), humanize.Comma(int64(risked)), genSeed, path)
		return nil
	},
}

// powerLawIndex biases selection toward low indices, giving a few
// members most of the activity.
func powerLawIndex(rng *rand.Rand, n int) int {
	idx := int(float64(n) * math.Pow(rng.Float64(), 2.5))
	if idx >= n {
		idx = n - 1
	}
	return idx
}

func init() {
	generateCmd.Flags().IntVar(&genMembers, "members", 100, "Number of members to generate")
	generateCmd.Flags().IntVar(&genPosts, "posts", 300, "Number of posts to generate")
	generateCmd.Flags().IntVar(&genComments, "comments", 800, "Number of comments to generate")
	generateCmd.Flags().Int64Var(&genSeed, "seed", 1, "PRNG seed; the same seed reproduces the same store")
	rootCmd.AddCommand(generateCmd)
}
