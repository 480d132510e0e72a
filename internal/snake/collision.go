package snake

import "github.com/rocketscienceinc/snake-arena-backend/internal/entity"

// CollisionKind classifies what a player's head ran into.
type CollisionKind string

const (
	CollisionWall  CollisionKind = "wall"
	CollisionSelf  CollisionKind = "self"
	CollisionSnake CollisionKind = "snake"
	CollisionFood  CollisionKind = "food"
)

// Collision is one collision event for one player on one tick.
type Collision struct {
	PlayerID string
	Kind     CollisionKind
	At       entity.Point

	// OtherID names the opposing player for snake collisions.
	OtherID string

	// HeadOn marks a symmetric head-to-head collision; both involved
	// players carry the flag.
	HeadOn bool
}

// IsLethal - reports whether the collision kills the player.
func (that Collision) IsLethal() bool {
	return that.Kind != CollisionFood
}

// DetectCollisions - computes all collision events for the given state. Pure
// with respect to the state: it only reads. It runs once per tick, after
// movement and before the grid rebuild, against a consistent snapshot.
//
// Per player the checks run in strict order: wall, self, other snakes, food.
// The first lethal hit wins for that player; food is only credited to a
// player with no lethal hit this tick.
func DetectCollisions(state *State) []Collision {
	var collisions []Collision

	for _, player := range state.ActivePlayers() {
		head := player.Head()

		if lethal, ok := detectLethal(state, player, head); ok {
			collisions = append(collisions, lethal)
			continue
		}

		if state.HasFoodAt(head) {
			collisions = append(collisions, Collision{
				PlayerID: player.ID,
				Kind:     CollisionFood,
				At:       head,
			})
		}
	}

	return collisions
}

func detectLethal(state *State, player *entity.Player, head entity.Point) (Collision, bool) {
	if !state.InBounds(head) {
		return Collision{PlayerID: player.ID, Kind: CollisionWall, At: head}, true
	}

	// Own body excluding the head itself.
	for _, seg := range player.Segments[1:] {
		if seg == head {
			return Collision{PlayerID: player.ID, Kind: CollisionSelf, At: head}, true
		}
	}

	// Any other active player's segments, their head included, so a
	// simultaneous head-on is detected from both sides.
	for _, other := range state.ActivePlayers() {
		if other.ID == player.ID {
			continue
		}

		if other.OccupiesCell(head) {
			return Collision{
				PlayerID: player.ID,
				Kind:     CollisionSnake,
				At:       head,
				OtherID:  other.ID,
				HeadOn:   other.Head() == head,
			}, true
		}
	}

	return Collision{}, false
}
