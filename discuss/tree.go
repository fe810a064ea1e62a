package discuss

// CommentNode is a comment with its direct replies.
type CommentNode struct {
	Comment

	Replies []*CommentNode
}

// BuildTree turns a flat list of comments into a forest. A comment whose
// parent is not part of the list becomes a root. Roots and replies keep the
// order of the input.
func BuildTree(comments []*Comment) []*CommentNode {
	nodes := make([]*CommentNode, 0, len(comments))
	nodesByID := make(map[int64]*CommentNode, len(comments))

	for _, comment := range comments {
		node := &CommentNode{
			Comment: *comment,
			Replies: make([]*CommentNode, 0),
		}

		nodes = append(nodes, node)
		nodesByID[comment.ID] = node
	}

	roots := make([]*CommentNode, 0, len(nodes))

	for _, node := range nodes {
		if node.ParentID == nil {
			roots = append(roots, node)

			continue
		}

		parent, found := nodesByID[*node.ParentID]
		if !found {
			roots = append(roots, node)

			continue
		}

		parent.Replies = append(parent.Replies, node)
	}

	return roots
}
