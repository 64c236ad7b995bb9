package indexer

import (
	"context"
	"errors"
	"time"

	ballot_types "github.com/ballotlabs/ballot-app/types"
	abci "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	comethttp "github.com/cometbft/cometbft/rpc/client/http"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
)

// ChainIndexer tails committed block results over RPC and mirrors the
// registry events into sqlite for the HTTP read API. It is a follower:
// nothing here writes chain state.
type ChainIndexer struct {
	logger        cmtlog.Logger
	Url           string
	Height        int64
	db            *gorm.DB
	cli           *comethttp.HTTP
	eventHandlers map[string]eventHandler
	ChainId       string
}

func NewChainIndexer(logger cmtlog.Logger, dbPath string, chainUrl string) (*ChainIndexer, error) {
	logger.Info("NewChainIndexer", "dbPath", dbPath, "url", chainUrl)
	cli, err := comethttp.New(chainUrl, "/websocket")
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Height{}, &Voter{}, &Proposal{}, &Vote{}, &Delegation{}, &AdminChange{}).Error; err != nil {
		return nil, err
	}
	h := Height{Id: 1}
	if err = db.First(&h).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	ctx := context.Background()
	gres, err := cli.Genesis(ctx)
	if err != nil {
		logger.Error("get genesis fail", "err", err)
		return nil, err
	}
	chainId := gres.Genesis.ChainID

	c := ChainIndexer{
		logger:        logger.With("module", "indexer"),
		Url:           chainUrl,
		Height:        int64(h.Height + 1),
		db:            db,
		cli:           cli,
		eventHandlers: map[string]eventHandler{},
		ChainId:       chainId,
	}

	c.eventHandlers = map[string]eventHandler{
		ballot_types.EventVoterAuthorizedType:  c.handleEventVoterAuthorized,
		ballot_types.EventProposalCreatedType:  c.handleEventProposalCreated,
		ballot_types.EventVoteCastType:         c.handleEventVoteCast,
		ballot_types.EventWeightDelegatedType:  c.handleEventWeightDelegated,
		ballot_types.EventAdminTransferredType: c.handleEventAdminTransferred,
	}
	return &c, nil
}

type eventHandler func(ctx context.Context, event abci.Event, height int64)

func (c *ChainIndexer) handleEvent(ctx context.Context, event abci.Event, height int64) {
	if h, ok := c.eventHandlers[event.Type]; ok {
		h(ctx, event, height)
	}
}

func (c *ChainIndexer) handleEventVoterAuthorized(ctx context.Context, event abci.Event, height int64) {
	ev := ballot_types.DecodeEventVoterAuthorized(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	voter := Voter{
		Id:         ev.Voter,
		Address:    ev.Address,
		Name:       ev.Name,
		Weight:     ev.Weight,
		Authorized: true,
		Height:     uint64(height),
	}
	if err := c.db.Save(&voter).Error; err != nil {
		c.logger.Error("save voter fail", "err", err)
	}
}

func (c *ChainIndexer) handleEventProposalCreated(ctx context.Context, event abci.Event, height int64) {
	ev := ballot_types.DecodeEventProposalCreated(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	proposal := Proposal{
		Id:              ev.ProposalIndex,
		ProposerIndex:   ev.Proposer,
		ProposerAddress: ev.ProposerAddress,
		Description:     ev.Description,
		StartTime:       ev.StartTime,
		EndTime:         ev.EndTime,
		Height:          uint64(height),
	}
	proposer, err := c.getVoterByAddress(ev.ProposerAddress)
	if err == nil && proposer != nil {
		proposal.ProposerName = proposer.Name
	}
	if err := c.db.Save(&proposal).Error; err != nil {
		c.logger.Error("save proposal fail", "err", err)
	}
}

func (c *ChainIndexer) handleEventVoteCast(ctx context.Context, event abci.Event, height int64) {
	ev := ballot_types.DecodeEventVoteCast(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	vote := Vote{
		Proposal:     ev.Proposal,
		VoterIndex:   ev.Voter,
		VoterAddress: ev.VoterAddress,
		Weight:       ev.Weight,
		Tally:        ev.Tally,
		Height:       uint64(height),
	}
	if err := c.db.Create(&vote).Error; err != nil {
		c.logger.Error("save vote fail", "err", err)
	}
	var proposal Proposal
	if err := c.db.First(&proposal, ev.Proposal).Error; err != nil {
		c.logger.Error("get proposal fail", "err", err)
		return
	}
	proposal.Tally = ev.Tally
	if err := c.db.Save(&proposal).Error; err != nil {
		c.logger.Error("save proposal fail", "err", err)
	}
}

func (c *ChainIndexer) handleEventWeightDelegated(ctx context.Context, event abci.Event, height int64) {
	ev := ballot_types.DecodeEventWeightDelegated(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	delegation := Delegation{
		FromIndex:   ev.From,
		FromAddress: ev.FromAddress,
		ToIndex:     ev.To,
		ToAddress:   ev.ToAddress,
		Amount:      ev.Amount,
		Height:      uint64(height),
	}
	if err := c.db.Create(&delegation).Error; err != nil {
		c.logger.Error("save delegation fail", "err", err)
	}
	// mirror the weight move
	from, err := c.getVoterByAddress(ev.FromAddress)
	if err == nil && from != nil {
		from.Weight = 0
		if err := c.db.Save(from).Error; err != nil {
			c.logger.Error("save voter fail", "err", err)
		}
	}
	to, err := c.getVoterByAddress(ev.ToAddress)
	if err == nil && to != nil {
		to.Weight += ev.Amount
		if err := c.db.Save(to).Error; err != nil {
			c.logger.Error("save voter fail", "err", err)
		}
	}
}

func (c *ChainIndexer) handleEventAdminTransferred(ctx context.Context, event abci.Event, height int64) {
	ev := ballot_types.DecodeEventAdminTransferred(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	change := AdminChange{
		OldAddress: ev.OldAddress,
		NewAddress: ev.NewAddress,
		Height:     uint64(height),
	}
	if err := c.db.Create(&change).Error; err != nil {
		c.logger.Error("save admin change fail", "err", err)
	}
}

func (c *ChainIndexer) Start(ctx context.Context) {
	var err error
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.cli == nil {
				c.cli, err = comethttp.New(c.Url, "/websocket")
				if err != nil {
					c.logger.Error("connect fail", "err", err)
					continue
				}
			}
			b, err := c.cli.Status(context.TODO())
			if err != nil {
				c.logger.Error("get status fail", "err", err)
				if !c.cli.IsRunning() {
					c.cli.Stop()
					c.cli, err = comethttp.New(c.Url, "/websocket")
					if err != nil {
						c.logger.Error("reconnect fail", "err", err)
						continue
					}
				}
				continue
			}
			for b.SyncInfo.LatestBlockHeight > c.Height {
				time.Sleep(time.Millisecond * 100)
				c.logger.Info("indexer syncing", "height", c.Height)
				events, err := c.cli.BlockResults(ctx, &c.Height)
				if err != nil {
					c.logger.Error("get block results fail", "err", err)
					if !c.cli.IsRunning() {
						c.cli.Stop()
						c.cli, err = comethttp.New(c.Url, "/websocket")
						if err != nil {
							c.logger.Error("reconnect fail", "err", err)
							continue
						}
					}
					continue
				}
				for _, res := range events.TxsResults {
					for _, event := range res.Events {
						c.handleEvent(ctx, event, c.Height)
					}
				}
				if err := c.db.Save(Height{
					Id:     1,
					Height: uint64(c.Height),
				}).Error; err != nil {
					c.logger.Error("save height fail", "err", err)
					continue
				}
				c.Height++
			}
		}
	}
}

func (c *ChainIndexer) getVoterByAddress(address string) (*Voter, error) {
	var voter Voter
	err := c.db.Where("address = ?", address).First(&voter).Error
	if err != nil {
		return nil, err
	}
	return &voter, nil
}

func (c *ChainIndexer) getVoterById(id uint64) (Voter, error) {
	var voter Voter
	err := c.db.Where("id = ?", id).First(&voter).Error
	if err != nil {
		return Voter{}, err
	}
	return voter, nil
}

func (c *ChainIndexer) getVoters(page int, pageSize int) ([]Voter, uint64, error) {
	var voters []Voter
	err := c.db.Order("id asc").Offset(page * pageSize).Limit(pageSize).Find(&voters).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&Voter{}).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return voters, total, nil
}

func (c *ChainIndexer) getProposalById(proposalId uint64) (Proposal, error) {
	var proposal Proposal
	err := c.db.Where("id = ?", proposalId).First(&proposal).Error
	if err != nil {
		return Proposal{}, err
	}
	return proposal, nil
}

func (c *ChainIndexer) getProposals(page int, pageSize int) ([]Proposal, uint64, error) {
	var proposals []Proposal
	err := c.db.Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&proposals).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&Proposal{}).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return proposals, total, nil
}

func (c *ChainIndexer) getProposalsByProposerAddr(proposerAddr string, page int, pageSize int) ([]Proposal, uint64, error) {
	var proposals []Proposal
	err := c.db.Where("proposer_address = ?", proposerAddr).Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&proposals).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&Proposal{}).Where("proposer_address = ?", proposerAddr).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return proposals, total, nil
}

func (c *ChainIndexer) getVotesByProposal(proposal uint64, page int, pageSize int) ([]Vote, uint64, error) {
	var votes []Vote
	err := c.db.Where("proposal = ?", proposal).Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&votes).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&Vote{}).Where("proposal = ?", proposal).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return votes, total, nil
}

func (c *ChainIndexer) getVotesByVoter(voter string, page int, pageSize int) ([]Vote, uint64, error) {
	var votes []Vote
	err := c.db.Where("voter_address = ?", voter).Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&votes).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&Vote{}).Where("voter_address = ?", voter).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return votes, total, nil
}

func (c *ChainIndexer) getDelegationsByAddr(addr string, page int, pageSize int) ([]Delegation, uint64, error) {
	var delegations []Delegation
	err := c.db.Where("from_address = ? OR to_address = ?", addr, addr).Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&delegations).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&Delegation{}).Where("from_address = ? OR to_address = ?", addr, addr).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return delegations, total, nil
}

func (c *ChainIndexer) getAdminChanges() ([]AdminChange, error) {
	var changes []AdminChange
	err := c.db.Order("id asc").Find(&changes).Error
	if err != nil {
		return nil, err
	}
	return changes, nil
}

// leader recomputes the strictly-greatest tally over the mirrored
// proposals, keeping the earliest on ties.
func (c *ChainIndexer) leader() (uint64, error) {
	var proposals []Proposal
	err := c.db.Order("id asc").Find(&proposals).Error
	if err != nil {
		return 0, err
	}
	var winner uint64
	var best uint64
	for _, p := range proposals {
		if p.Tally > best {
			best = p.Tally
			winner = p.Id
		}
	}
	return winner, nil
}
