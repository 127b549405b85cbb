package room

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"landlord/internal/card"
	"landlord/internal/hand"
	"landlord/internal/protocol"
)

// readCommand reads one command from seat, distinguishing a dead
// connection (errSeatLost, ends the round) from a malformed read that
// folded two lines into one recv (a PlayerError of KindInput, rejected to
// the seat so it can retry — source note: receive_message's retry loop).
func readCommand(r *Room, seat *Seat) (string, error) {
	cmd, err := seat.Session.ReadCommand()
	if err != nil {
		if errors.Is(err, protocol.ErrEmbeddedNewline) {
			return "", inputError("命令格式有误，请每次只发送一条指令")
		}
		r.removeSeat(seat, allError("【%s】退出房间", seat.Name))
		return "", errSeatLost{}
	}
	return cmd, nil
}

// playRound drives one full round for a filled room: dealing and bidding,
// then turn-based play through to a win. It mirrors the original Play
// class's marking()+deal() sequence, split the same way.
func playRound(r *Room) error {
	r.mu.Lock()
	seats := make([]*Seat, len(r.seats))
	copy(seats, r.seats)
	r.mu.Unlock()
	if len(seats) != 3 {
		return fatalError("room: playRound started without three seats")
	}

	if err := announceRoundStart(r, seats); err != nil {
		return err
	}

	landlordIdx, roleNames, err := dealAndBid(r, seats)
	if err != nil {
		return err
	}
	return playTricks(r, seats, landlordIdx, roleNames)
}

// announceRoundStart sends every seat its own index and the full name
// list at the top of each round, not just on Join — mirroring the
// original's Play object re-announcing names on every fresh deal.
func announceRoundStart(r *Room, seats []*Seat) error {
	names := make([]string, len(seats))
	for i, s := range seats {
		names[i] = s.Name
	}
	for i, seat := range seats {
		if err := r.sendTo(seat, protocol.Message{
			Code: protocol.CodeState,
			Data: protocol.Update{
				NameList: names,
				MyIndex:  protocol.IntPtr(i),
				State:    protocol.IntPtr(protocol.StateWaiting),
			},
		}); err != nil {
			return err
		}
	}
	return nil
}

// dealAndBid deals a fresh 17-card hand to each seat and runs the bidding
// round, starting over from a fresh deck whenever every seat bids zero.
// It returns the landlord's seat index and the role-annotated name list
// ("name:地主" / "name:农民") used for the rest of the round's broadcasts.
func dealAndBid(r *Room, seats []*Seat) (int, []string, error) {
	for {
		deck := card.NewDeck()
		deck.Shuffle(r.rng)
		hands, err := deck.Deal(len(seats), card.HandSize)
		if err != nil {
			return 0, nil, fatalError("%s", err)
		}

		for i, seat := range seats {
			seat.Hand = hands[i]
			card.SortDescending(seat.Hand)
			if err := r.sendTo(seat, protocol.Message{
				Code: protocol.CodeState,
				Data: protocol.Update{MyCardList: card.Strings(seat.Hand)},
			}); err != nil {
				return 0, nil, err
			}
		}

		markNames := make([]string, len(seats))
		for i, seat := range seats {
			markNames[i] = seat.Name
		}

		maxMark, maxIdx := 0, 0
		for i, seat := range seats {
			if err := r.broadcastExcept(protocol.Message{
				Code: protocol.CodeState,
				Data: protocol.Update{TopMessage: fmt.Sprintf("等待【%s】叫分", seat.Name)},
			}, seat); err != nil {
				return 0, nil, err
			}

			mark, err := bidOnce(r, seat)
			if err != nil {
				return 0, nil, err
			}
			markNames[i] = fmt.Sprintf("%s:%d分", seat.Name, mark)

			if err := r.broadcast(protocol.Message{
				Code: protocol.CodeState,
				Data: protocol.Update{
					TopMessage: fmt.Sprintf("【%s】叫 %d 分", seat.Name, mark),
					NameList:   markNames,
					State:      protocol.IntPtr(protocol.StateWaiting),
				},
			}); err != nil {
				return 0, nil, err
			}

			if mark > maxMark {
				maxMark, maxIdx = mark, i
				if mark == 3 {
					break
				}
			}
		}

		if maxMark == 0 {
			continue
		}

		kitty := deck.Kitty()
		landlord := seats[maxIdx]
		landlord.Hand = append(landlord.Hand, kitty...)
		card.SortDescending(landlord.Hand)
		if err := r.sendTo(landlord, protocol.Message{
			Code: protocol.CodeState,
			Data: protocol.Update{MyCardList: card.Strings(landlord.Hand)},
		}); err != nil {
			return 0, nil, err
		}

		roleNames := make([]string, len(seats))
		for i, seat := range seats {
			role := "农民"
			if i == maxIdx {
				role = "地主"
			}
			roleNames[i] = seat.Name + ":" + role
		}
		if err := r.broadcast(protocol.Message{
			Code: protocol.CodeState,
			Data: protocol.Update{
				TopMessage:     fmt.Sprintf("地主是:%s", landlord.Name),
				NameList:       roleNames,
				RemainCardList: card.Strings(kitty),
				State:          protocol.IntPtr(protocol.StateWaiting),
			},
		}); err != nil {
			return 0, nil, err
		}

		return maxIdx, roleNames, nil
	}
}

// bidOnce prompts one seat for its bid, re-prompting the same seat on a
// non-numeric or out-of-range answer rather than ending the round.
func bidOnce(r *Room, seat *Seat) (int, error) {
	for {
		if err := r.sendTo(seat, protocol.Message{
			Code: protocol.CodeState,
			Data: protocol.Update{TopMessage: "请叫分（0~3）", State: protocol.IntPtr(protocol.StateBidding)},
		}); err != nil {
			return 0, err
		}

		cmd, err := readCommand(r, seat)
		if err != nil {
			var perr *PlayerError
			if errors.As(err, &perr) && perr.Kind == KindInput {
				if sendErr := r.sendTo(seat, protocol.Message{
					Code: protocol.CodeState,
					Data: protocol.Update{TopMessage: perr.Message, State: protocol.IntPtr(protocol.StateBidding)},
				}); sendErr != nil {
					return 0, sendErr
				}
				continue
			}
			return 0, err
		}

		mark, convErr := strconv.Atoi(strings.TrimSpace(cmd))
		if convErr != nil {
			if err := r.sendTo(seat, protocol.Message{
				Code: protocol.CodeState,
				Data: protocol.Update{TopMessage: "格式错误，请输入纯数字", State: protocol.IntPtr(protocol.StateBidding)},
			}); err != nil {
				return 0, err
			}
			continue
		}
		if mark < 0 || mark > 3 {
			if err := r.sendTo(seat, protocol.Message{
				Code: protocol.CodeState,
				Data: protocol.Update{TopMessage: "叫分范围有误，请重新叫分", State: protocol.IntPtr(protocol.StateBidding)},
			}); err != nil {
				return 0, err
			}
			continue
		}
		return mark, nil
	}
}

// playTricks runs turn-based play until a seat empties its hand. freeDeal
// marks a lead (nothing to follow); it's forced true whenever play comes
// back around to whoever won the last trick, mirroring Play.deal's
// last_players_index check.
func playTricks(r *Room, seats []*Seat, landlordIdx int, roleNames []string) error {
	playersIdx := landlordIdx
	lastPlayersIdx := landlordIdx
	freeDeal := true
	var lastPlay hand.Hand

	for {
		seat := seats[playersIdx]

		counts := make([]int, len(seats))
		for i, s := range seats {
			counts[i] = len(s.Hand)
		}
		if err := r.broadcast(protocol.Message{
			Code: protocol.CodeState,
			Data: protocol.Update{CardCountList: counts, State: protocol.IntPtr(protocol.StateWaiting)},
		}); err != nil {
			return err
		}

		if lastPlayersIdx == playersIdx {
			lastPlay = hand.Hand{}
			freeDeal = true
		}

		notified := false
		passed := false
		for {
			if !notified {
				msg := fmt.Sprintf("轮到【%s】出牌了", roleNames[playersIdx])
				if freeDeal {
					msg = fmt.Sprintf("轮到【%s】出任意牌了", roleNames[playersIdx])
				}
				if err := r.broadcast(protocol.Message{
					Code: protocol.CodeState,
					Data: protocol.Update{TopMessage: msg},
				}); err != nil {
					return err
				}
				notified = true
			}

			var played hand.Hand
			var playErr error
			if freeDeal {
				played, playErr = playFree(r, seat, playersIdx)
			} else {
				played, passed, playErr = playFollow(r, seat, playersIdx, lastPlay, roleNames)
			}

			if playErr != nil {
				var perr *PlayerError
				if errors.As(playErr, &perr) && perr.Kind == KindInput {
					if err := r.sendTo(seat, protocol.Message{
						Code: protocol.CodeState,
						Data: protocol.Update{TopMessage: perr.Message},
					}); err != nil {
						return err
					}
					continue
				}
				return playErr
			}

			if !freeDeal && passed {
				break
			}
			lastPlay = played
			lastPlayersIdx = playersIdx
			break
		}

		winnerName := roleNames[playersIdx]
		playersIdx = (playersIdx + 1) % len(seats)
		freeDeal = false

		if len(seat.Hand) == 0 {
			if err := r.broadcast(protocol.Message{
				Code: protocol.CodeState,
				Data: protocol.Update{TopMessage: fmt.Sprintf("【%s】胜利！5秒后结束本局游戏", winnerName)},
			}); err != nil {
				return err
			}
			<-r.clock.NewTimer(5*time.Second, "room.win").C
			return r.broadcast(protocol.Message{Code: protocol.CodeEnd, Data: nil})
		}
	}
}

// playFree handles one lead play: the seat must play something, since
// there is nothing to follow and nobody to defer to.
func playFree(r *Room, seat *Seat, idx int) (hand.Hand, error) {
	if err := r.sendTo(seat, protocol.Message{
		Code: protocol.CodeState,
		Data: protocol.Update{State: protocol.IntPtr(protocol.StateFree)},
	}); err != nil {
		return hand.Hand{}, err
	}

	cmd, err := readCommand(r, seat)
	if err != nil {
		return hand.Hand{}, err
	}
	cmd = strings.TrimSpace(cmd)

	if isPass(cmd) {
		return hand.Hand{}, inputError("本次你为任意牌，必须出牌")
	}

	cards, err := parsePlay(cmd)
	if err != nil {
		return hand.Hand{}, inputError("%s", err)
	}

	played, err := hand.Classify(cards)
	if err != nil {
		return hand.Hand{}, inputError("出牌不符合规则")
	}

	remaining, err := card.RemoveAll(seat.Hand, cards)
	if err != nil {
		return hand.Hand{}, inputError("你没有足够的牌")
	}
	seat.Hand = remaining

	if err := r.sendTo(seat, protocol.Message{
		Code: protocol.CodeState,
		Data: protocol.Update{MyCardList: card.Strings(seat.Hand)},
	}); err != nil {
		return hand.Hand{}, err
	}
	if err := r.broadcast(protocol.Message{
		Code: protocol.CodeState,
		Data: protocol.Update{
			LastCardPlayer: protocol.IntPtr(idx),
			LastCardType:   played.Type.String(),
			LastCardList:   played.Strings(),
			State:          protocol.IntPtr(protocol.StateWaiting),
		},
	}); err != nil {
		return hand.Hand{}, err
	}

	return played, nil
}

// playFollow handles one follow play: pass is legal here and simply ends
// the seat's turn without playing a card; a play must beat lastPlay.
func playFollow(r *Room, seat *Seat, idx int, lastPlay hand.Hand, roleNames []string) (hand.Hand, bool, error) {
	if err := r.sendTo(seat, protocol.Message{
		Code: protocol.CodeState,
		Data: protocol.Update{State: protocol.IntPtr(protocol.StatePlaying)},
	}); err != nil {
		return hand.Hand{}, false, err
	}

	cmd, err := readCommand(r, seat)
	if err != nil {
		return hand.Hand{}, false, err
	}
	cmd = strings.TrimSpace(cmd)

	if isPass(cmd) {
		if err := r.broadcast(protocol.Message{
			Code: protocol.CodeState,
			Data: protocol.Update{TopMessage: fmt.Sprintf("【%s】选择了不出", roleNames[idx]), State: protocol.IntPtr(protocol.StateWaiting)},
		}); err != nil {
			return hand.Hand{}, false, err
		}
		return hand.Hand{}, true, nil
	}

	cards, err := parsePlay(cmd)
	if err != nil {
		return hand.Hand{}, false, inputError("%s", err)
	}

	played, err := hand.Classify(cards)
	if err != nil {
		return hand.Hand{}, false, inputError("出牌不符合规则")
	}

	if !hand.Beats(played, lastPlay, false) {
		return hand.Hand{}, false, inputError("出牌不符合规则")
	}

	remaining, err := card.RemoveAll(seat.Hand, cards)
	if err != nil {
		return hand.Hand{}, false, inputError("你没有足够的牌")
	}
	seat.Hand = remaining

	if err := r.sendTo(seat, protocol.Message{
		Code: protocol.CodeState,
		Data: protocol.Update{MyCardList: card.Strings(seat.Hand)},
	}); err != nil {
		return hand.Hand{}, false, err
	}
	if err := r.broadcast(protocol.Message{
		Code: protocol.CodeState,
		Data: protocol.Update{
			LastCardPlayer: protocol.IntPtr(idx),
			LastCardType:   played.Type.String(),
			LastCardList:   played.Strings(),
			State:          protocol.IntPtr(protocol.StateWaiting),
		},
	}); err != nil {
		return hand.Hand{}, false, err
	}

	return played, false, nil
}

func isPass(cmd string) bool {
	lower := strings.ToLower(cmd)
	return lower == "不出" || lower == "pass"
}

// parsePlay splits a play command into card tokens, tolerating but
// ignoring a trailing two-digit type-code annotation from the later
// protocol revision: the server always re-classifies from the cards
// themselves rather than trust the client's hint. The annotation is
// detected only as a standalone trailing token matching two ASCII digits,
// since no legal card token is a bare two-digit numeral (ranks are always
// suit-prefixed, or one of the two bare joker words).
func parsePlay(cmd string) ([]card.Card, error) {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return nil, fmt.Errorf("出牌为空")
	}
	if last := fields[len(fields)-1]; isTypeCode(last) {
		fields = fields[:len(fields)-1]
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("出牌为空")
	}
	return card.ParseAll(fields)
}

func isTypeCode(token string) bool {
	return len(token) == 2 &&
		token[0] >= '0' && token[0] <= '9' &&
		token[1] >= '0' && token[1] <= '9'
}
